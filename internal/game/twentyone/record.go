package twentyone

import (
	"fmt"
	"time"

	"twenty-one-go/internal/game/common"
	"twenty-one-go/internal/models"
)

// Record is the plain, storable form of a Game. The deck is deliberately
// absent: rehydration deals from a fresh deck.
type Record struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Stage       Stage        `json:"stage"`
	Settled     bool         `json:"settled"`
	Outcome     Outcome      `json:"outcome,omitempty"`
	Rules       Rules        `json:"rules"`
	Player      PlayerRecord `json:"player"`
	Dealer      DealerRecord `json:"dealer"`
	DealerMoves []DealerMove `json:"dealer_moves,omitempty"`
	LastPlayed  time.Time    `json:"last_played"`
}

type PlayerRecord struct {
	Name          string        `json:"name"`
	Bankroll      int           `json:"bankroll"`
	BetSize       int           `json:"bet_size"`
	RichThreshold int           `json:"rich_threshold"`
	Hand          []common.Card `json:"hand"`
}

type DealerRecord struct {
	Name         string        `json:"name"`
	HitThreshold int           `json:"hit_threshold"`
	Hand         []common.Card `json:"hand"`
}

func (g *Game) Record() Record {
	return Record{
		ID:      g.ID,
		Title:   g.Title,
		Stage:   g.Stage,
		Settled: g.Settled,
		Outcome: g.Outcome,
		Rules:   g.Rules,
		Player: PlayerRecord{
			Name:          g.Player.Name,
			Bankroll:      g.Player.Bankroll,
			BetSize:       g.Player.BetSize,
			RichThreshold: g.Player.RichThreshold,
			Hand:          append([]common.Card{}, g.Player.Hand...),
		},
		Dealer: DealerRecord{
			Name:         g.Dealer.Name,
			HitThreshold: g.Dealer.HitThreshold,
			Hand:         append([]common.Card{}, g.Dealer.Hand...),
		},
		DealerMoves: append([]DealerMove(nil), g.DealerMoves...),
		LastPlayed:  g.LastPlayed,
	}
}

// FromRecord rebuilds a Game from its stored form. It does not touch any
// storage. The new deck is shuffled and excludes the cards already held, so
// a hand in progress can continue without duplicating a card.
func FromRecord(r Record, opts ...Option) (*Game, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("%w: missing id", models.ErrInvalidGameRecord)
	}
	if r.Stage == "" {
		r.Stage = StageAwaitingBet
	}
	if !r.Stage.valid() {
		return nil, fmt.Errorf("%w: unknown stage %q", models.ErrInvalidGameRecord, r.Stage)
	}
	if err := checkStageHands(r); err != nil {
		return nil, err
	}
	if r.Player.BetSize <= 0 {
		return nil, fmt.Errorf("%w: bet size must be positive", models.ErrInvalidGameRecord)
	}
	rules := r.Rules.normalized()
	if r.Dealer.HitThreshold <= 0 {
		r.Dealer.HitThreshold = rules.HitThreshold
	}
	if r.Player.RichThreshold <= 0 {
		r.Player.RichThreshold = rules.RichThreshold
	}

	held := make([]common.Card, 0, len(r.Player.Hand)+len(r.Dealer.Hand))
	held = append(held, r.Player.Hand...)
	held = append(held, r.Dealer.Hand...)
	seen := make(map[common.Card]bool, len(held))
	for _, c := range held {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: invalid card %+v", models.ErrInvalidGameRecord, c)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: card %s held twice", models.ErrInvalidGameRecord, c)
		}
		seen[c] = true
	}

	player := NewPlayer(r.Player.BetSize, r.Player.Bankroll, r.Player.RichThreshold)
	if r.Player.Name != "" {
		player.Name = r.Player.Name
	}
	player.Hand = append(player.Hand, r.Player.Hand...)

	dealer := NewDealer(r.Dealer.HitThreshold)
	if r.Dealer.Name != "" {
		dealer.Name = r.Dealer.Name
	}
	dealer.Hand = append(dealer.Hand, r.Dealer.Hand...)

	g := &Game{
		ID:          r.ID,
		Title:       r.Title,
		Player:      player,
		Dealer:      dealer,
		Rules:       rules,
		Stage:       r.Stage,
		Settled:     r.Settled,
		Outcome:     r.Outcome,
		DealerMoves: append([]DealerMove(nil), r.DealerMoves...),
		LastPlayed:  r.LastPlayed,
	}
	g.apply(opts)
	g.Deck.Remove(held...)
	return g, nil
}

// checkStageHands rejects records whose stage cannot follow from the hands.
// Dealing and the dealer's turn happen inside a single call and are never
// stored.
func checkStageHands(r Record) error {
	np, nd := len(r.Player.Hand), len(r.Dealer.Hand)
	switch r.Stage {
	case StageDealing, StageDealerTurn:
		return fmt.Errorf("%w: stage %s is never stored", models.ErrInvalidGameRecord, r.Stage)
	case StageAwaitingBet:
		if np != 0 || nd != 0 {
			return fmt.Errorf("%w: hands dealt while awaiting a bet", models.ErrInvalidGameRecord)
		}
	case StagePlayerTurn, StageRoundResolved:
		if np < InitialCards || nd < InitialCards {
			return fmt.Errorf("%w: %s needs at least %d cards per hand", models.ErrInvalidGameRecord, r.Stage, InitialCards)
		}
	}
	return nil
}
