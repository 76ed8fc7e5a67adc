package twentyone

import (
	"fmt"
	"strings"
	"time"

	"twenty-one-go/internal/game/common"
	"twenty-one-go/internal/models"
)

type Stage string

const (
	StageAwaitingBet   Stage = "awaiting_bet"
	StageDealing       Stage = "dealing"
	StagePlayerTurn    Stage = "player_turn"
	StageDealerTurn    Stage = "dealer_turn"
	StageRoundResolved Stage = "round_resolved"
)

func (s Stage) valid() bool {
	switch s {
	case StageAwaitingBet, StageDealing, StagePlayerTurn, StageDealerTurn, StageRoundResolved:
		return true
	default:
		return false
	}
}

// Outcome names the winner of a round. A push has no winner.
type Outcome string

const (
	OutcomeNone   Outcome = ""
	OutcomePlayer Outcome = "player"
	OutcomeDealer Outcome = "dealer"
	OutcomePush   Outcome = "push"
)

const (
	DealerHit  = "hit"
	DealerStay = "stay"
	DealerBust = "bust"
)

// DealerMove is one step of the dealer's automatic turn.
type DealerMove struct {
	Action string       `json:"action"` // hit|stay|bust
	Card   *common.Card `json:"card,omitempty"`
	Total  int          `json:"total"`
}

// Game is one player against the dealer, sharing a single deck. A Game is
// owned by one caller at a time and is not safe for concurrent use.
type Game struct {
	ID     string
	Title  string
	Player *Participant
	Dealer *Participant
	Deck   *common.Deck
	Rules  Rules

	Stage       Stage
	Settled     bool
	Outcome     Outcome
	DealerMoves []DealerMove
	LastPlayed  time.Time

	now func() time.Time
	src common.Source
}

type Option func(*Game)

// WithClock overrides the clock used to stamp LastPlayed.
func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// WithSource sets the random source used to shuffle the deck.
func WithSource(src common.Source) Option {
	return func(g *Game) { g.src = src }
}

// WithDeck replaces the deck. The deck is still reset at the start of every round.
func WithDeck(d *common.Deck) Option {
	return func(g *Game) { g.Deck = d }
}

// New creates a game waiting for its first bet. The id comes from the caller.
func New(id, title string, betSize, bankroll int, rules Rules, opts ...Option) (*Game, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" {
		return nil, fmt.Errorf("%w: id required", models.ErrInvalidGameRecord)
	}
	if title == "" {
		return nil, models.ErrInvalidTitle
	}
	if betSize <= 0 {
		return nil, fmt.Errorf("%w: bet size must be positive", models.ErrInvalidBet)
	}
	if bankroll <= 0 {
		return nil, fmt.Errorf("%w: starting bankroll must be positive", models.ErrInvalidBet)
	}
	rules = rules.normalized()

	g := &Game{
		ID:     id,
		Title:  title,
		Player: NewPlayer(betSize, bankroll, rules.RichThreshold),
		Dealer: NewDealer(rules.HitThreshold),
		Rules:  rules,
		Stage:  StageAwaitingBet,
	}
	g.apply(opts)
	g.LastPlayed = g.now().UTC()
	return g, nil
}

func (g *Game) apply(opts []Option) {
	for _, o := range opts {
		o(g)
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.Deck == nil {
		g.Deck = common.NewDeck(g.src)
	}
}

func (g *Game) participants() []*Participant {
	return []*Participant{g.Player, g.Dealer}
}

// Participant returns the player or the dealer.
func (g *Game) Participant(role Role) (*Participant, error) {
	switch role {
	case RolePlayer:
		return g.Player, nil
	case RoleDealer:
		return g.Dealer, nil
	default:
		return nil, fmt.Errorf("%w: unknown participant %q", models.ErrInvalidMove, role)
	}
}

// StartRound resets the deck, clears both hands and deals the starting hands,
// player first.
func (g *Game) StartRound() error {
	switch {
	case g.Stage == StageAwaitingBet:
	case g.Stage == StageRoundResolved && g.Settled:
	case g.Stage == StageRoundResolved:
		return fmt.Errorf("%w: previous round has not been settled", models.ErrInvalidMove)
	default:
		return fmt.Errorf("%w: cannot start a round during %s", models.ErrInvalidMove, g.Stage)
	}
	if g.Player.IsBroke() {
		return fmt.Errorf("%w: player is broke", models.ErrInvalidMove)
	}

	g.Stage = StageDealing
	g.Settled = false
	g.Outcome = OutcomeNone
	g.DealerMoves = nil
	g.Deck.Reset()
	for _, p := range g.participants() {
		p.ClearHand()
		for i := 0; i < InitialCards; i++ {
			if err := g.dealTo(p); err != nil {
				g.abortRound()
				return err
			}
		}
	}
	g.Stage = StagePlayerTurn
	return nil
}

// Hit deals one card to the given participant. The player may only hit on
// their own turn; the dealer only draws during its automatic turn. A player
// bust ends the round without a dealer turn.
func (g *Game) Hit(role Role) error {
	p, err := g.Participant(role)
	if err != nil {
		return err
	}
	switch role {
	case RolePlayer:
		if g.Stage != StagePlayerTurn {
			return fmt.Errorf("%w: player cannot hit during %s", models.ErrInvalidMove, g.Stage)
		}
	case RoleDealer:
		if g.Stage != StageDealerTurn {
			return fmt.Errorf("%w: dealer only draws on its own turn", models.ErrInvalidMove)
		}
	}

	if err := g.dealTo(p); err != nil {
		g.abortRound()
		return err
	}
	if role == RolePlayer && g.Player.IsBusted() {
		g.Stage = StageRoundResolved
	}
	return nil
}

// Stay ends the player's turn and plays the dealer's fixed policy.
func (g *Game) Stay() ([]DealerMove, error) {
	if g.Stage != StagePlayerTurn {
		return nil, fmt.Errorf("%w: cannot stay during %s", models.ErrInvalidMove, g.Stage)
	}
	g.Stage = StageDealerTurn
	if err := g.playDealer(); err != nil {
		return nil, err
	}
	return append([]DealerMove(nil), g.DealerMoves...), nil
}

func (g *Game) DealerUnderThreshold() bool {
	return g.Dealer.Total() < g.Dealer.HitThreshold
}

func (g *Game) playDealer() error {
	for g.DealerUnderThreshold() {
		if err := g.Hit(RoleDealer); err != nil {
			return err
		}
		c := g.Dealer.Hand[len(g.Dealer.Hand)-1]
		g.DealerMoves = append(g.DealerMoves, DealerMove{Action: DealerHit, Card: &c, Total: g.Dealer.Total()})
	}
	final := DealerStay
	if g.Dealer.IsBusted() {
		final = DealerBust
	}
	g.DealerMoves = append(g.DealerMoves, DealerMove{Action: final, Total: g.Dealer.Total()})
	g.Stage = StageRoundResolved
	return nil
}

// Winner compares the two hands. A busted player always loses; otherwise a
// busted dealer or a higher player total wins for the player, and equal
// totals are a push.
func (g *Game) Winner() Outcome {
	pt, dt := g.Player.Total(), g.Dealer.Total()
	switch {
	case g.Player.IsBusted():
		return OutcomeDealer
	case g.Dealer.IsBusted(), pt > dt:
		return OutcomePlayer
	case pt < dt:
		return OutcomeDealer
	default:
		return OutcomePush
	}
}

func (g *Game) IsRoundOver() bool {
	return g.Stage == StageRoundResolved
}

// Resolve settles the wager for a finished round and stamps LastPlayed.
// Calling it again after settlement returns the same outcome without paying
// twice.
func (g *Game) Resolve() (Outcome, error) {
	if g.Stage != StageRoundResolved {
		return OutcomeNone, fmt.Errorf("%w: round is not over", models.ErrInvalidMove)
	}
	if g.Settled {
		return g.Outcome, nil
	}
	outcome := g.Winner()
	switch outcome {
	case OutcomePlayer:
		g.Player.AddToWinnings()
	case OutcomeDealer:
		g.Player.DeductFromWinnings()
	}
	g.Outcome = outcome
	g.Settled = true
	g.LastPlayed = g.now().UTC()
	return outcome, nil
}

// ResultMessage describes how the round ended. Empty while a round is in play.
func (g *Game) ResultMessage() string {
	if !g.IsRoundOver() {
		return ""
	}
	pt, dt := g.Player.Total(), g.Dealer.Total()
	switch {
	case g.Player.IsBusted():
		return "You busted! DEALER WINS :("
	case g.Dealer.IsBusted():
		return "Dealer busted! YOU WIN :)"
	case pt == dt:
		return "It's an exact tie! Wow!"
	case pt > dt:
		return "You win!"
	default:
		return "Dealer Wins!"
	}
}

// Moves lists the commands the caller may issue in the current stage.
func (g *Game) Moves() []string {
	switch g.Stage {
	case StageAwaitingBet:
		if g.Player.IsBroke() {
			return []string{}
		}
		return []string{"bet"}
	case StagePlayerTurn:
		return []string{"hit", "stay"}
	case StageRoundResolved:
		if !g.Settled {
			return []string{"resolve"}
		}
		if g.Player.IsBroke() {
			return []string{}
		}
		return []string{"bet"}
	default:
		return []string{}
	}
}

func (g *Game) dealTo(p *Participant) error {
	c, err := g.Deck.DealCard()
	if err != nil {
		return fmt.Errorf("deal to %s: %w", p.Role, err)
	}
	p.AddCard(c)
	return nil
}

// abortRound drops a round that cannot continue, e.g. after the deck ran out.
func (g *Game) abortRound() {
	for _, p := range g.participants() {
		p.ClearHand()
	}
	g.DealerMoves = nil
	g.Settled = false
	g.Outcome = OutcomeNone
	g.Stage = StageAwaitingBet
}
