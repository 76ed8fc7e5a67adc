package handlers

import (
	"time"

	"twenty-one-go/internal/game/twentyone"
)

type ParticipantView struct {
	Name        string               `json:"name"`
	Hand        []twentyone.CardView `json:"hand"`
	Total       int                  `json:"total"`
	HiddenCards int                  `json:"hidden_cards,omitempty"`
	Busted      bool                 `json:"busted"`
}

type PlayerView struct {
	ParticipantView
	Bankroll        int    `json:"bankroll"`
	BankrollDisplay string `json:"bankroll_display"`
	BetSize         int    `json:"bet_size"`
	Broke           bool   `json:"broke"`
	Rich            bool   `json:"rich"`
}

type DealerMoveView struct {
	Action  string              `json:"action"`
	Message string              `json:"message"`
	Card    *twentyone.CardView `json:"card,omitempty"`
	Total   int                 `json:"total"`
}

// GameView is what clients see of a game. While the player is still acting
// the dealer's hole card is withheld.
type GameView struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Stage       twentyone.Stage  `json:"stage"`
	Settled     bool             `json:"settled"`
	Outcome     string           `json:"outcome,omitempty"`
	Result      string           `json:"result,omitempty"`
	Player      PlayerView       `json:"player"`
	Dealer      ParticipantView  `json:"dealer"`
	DealerMoves []DealerMoveView `json:"dealer_moves,omitempty"`
	Moves       []string         `json:"moves"`
	LastPlayed  time.Time        `json:"last_played"`
}

// GameSummary is one row of the games list.
type GameSummary struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Stage           twentyone.Stage `json:"stage"`
	Bankroll        int             `json:"bankroll"`
	BankrollDisplay string          `json:"bankroll_display"`
	BetSize         int             `json:"bet_size"`
	Broke           bool            `json:"broke"`
	Rich            bool            `json:"rich"`
	LastPlayed      time.Time       `json:"last_played"`
}

var dealerMoveMessages = map[string]string{
	twentyone.DealerHit:  "Dealer hits!",
	twentyone.DealerStay: "Dealer stays.",
	twentyone.DealerBust: "DEALER BUSTED!",
}

func buildGameView(g *twentyone.Game) *GameView {
	p := g.Player
	v := &GameView{
		ID:      g.ID,
		Title:   g.Title,
		Stage:   g.Stage,
		Settled: g.Settled,
		Outcome: string(g.Outcome),
		Result:  g.ResultMessage(),
		Player: PlayerView{
			ParticipantView: participantView(p, false),
			Bankroll:        p.Bankroll,
			BankrollDisplay: formatMoney(p.Bankroll),
			BetSize:         p.BetSize,
			Broke:           p.IsBroke(),
			Rich:            p.IsRich(),
		},
		Dealer:     participantView(g.Dealer, holeCardHidden(g.Stage)),
		Moves:      g.Moves(),
		LastPlayed: g.LastPlayed,
	}
	for _, m := range g.DealerMoves {
		mv := DealerMoveView{Action: m.Action, Message: dealerMoveMessages[m.Action], Total: m.Total}
		if m.Card != nil {
			cv := twentyone.CardView{Rank: m.Card.RankName(), Suit: m.Card.SuitName(), Value: m.Card.Value(), Title: m.Card.Title()}
			mv.Card = &cv
		}
		v.DealerMoves = append(v.DealerMoves, mv)
	}
	return v
}

func holeCardHidden(stage twentyone.Stage) bool {
	return stage == twentyone.StageDealing || stage == twentyone.StagePlayerTurn
}

func participantView(p *twentyone.Participant, hideHole bool) ParticipantView {
	hand := p.HandDisplay()
	if !hideHole || len(hand) <= 1 {
		return ParticipantView{Name: p.Name, Hand: hand, Total: p.Total(), Busted: p.IsBusted()}
	}
	return ParticipantView{
		Name:        p.Name,
		Hand:        hand[:1],
		Total:       twentyone.HandTotal(p.Hand[:1]).Total,
		HiddenCards: len(hand) - 1,
	}
}

func buildSummary(g *twentyone.Game) GameSummary {
	return GameSummary{
		ID:              g.ID,
		Title:           g.Title,
		Stage:           g.Stage,
		Bankroll:        g.Player.Bankroll,
		BankrollDisplay: formatMoney(g.Player.Bankroll),
		BetSize:         g.Player.BetSize,
		Broke:           g.Player.IsBroke(),
		Rich:            g.Player.IsRich(),
		LastPlayed:      g.LastPlayed,
	}
}
