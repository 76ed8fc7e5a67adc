package twentyone

import "twenty-one-go/internal/game/common"

type Role string

const (
	RolePlayer Role = "player"
	RoleDealer Role = "dealer"
)

const (
	PlayerName = "You"
	DealerName = "Dealer"
)

// Participant is either the player or the dealer. Wager fields are only
// meaningful for the player, HitThreshold only for the dealer.
type Participant struct {
	Role Role
	Name string
	Hand []common.Card

	Bankroll      int
	BetSize       int
	RichThreshold int

	HitThreshold int
}

func NewPlayer(betSize, bankroll, richThreshold int) *Participant {
	return &Participant{
		Role:          RolePlayer,
		Name:          PlayerName,
		Hand:          []common.Card{},
		Bankroll:      bankroll,
		BetSize:       betSize,
		RichThreshold: richThreshold,
	}
}

func NewDealer(hitThreshold int) *Participant {
	return &Participant{
		Role:         RoleDealer,
		Name:         DealerName,
		Hand:         []common.Card{},
		HitThreshold: hitThreshold,
	}
}

// HandValue is a computed hand total. LowAces counts aces that had to be
// counted as 1 to keep the total at or under the bust limit; SoftAces counts
// aces still counted as 11.
type HandValue struct {
	Total    int `json:"total"`
	LowAces  int `json:"low_aces"`
	SoftAces int `json:"soft_aces"`
}

func (v HandValue) Soft() bool {
	return v.SoftAces > 0
}

// HandTotal scores a hand. Every ace starts at its high value and aces are
// downgraded one at a time until the total no longer busts or none are left.
func HandTotal(cards []common.Card) HandValue {
	var v HandValue
	for _, c := range cards {
		v.Total += c.Value()
		if c.IsAce() {
			v.SoftAces++
		}
	}
	for v.Total > BustLimit && v.SoftAces > 0 {
		v.Total -= common.HighAceValue - common.LowAceValue
		v.SoftAces--
		v.LowAces++
	}
	return v
}

func (p *Participant) AddCard(c common.Card) {
	p.Hand = append(p.Hand, c)
}

func (p *Participant) ClearHand() {
	p.Hand = []common.Card{}
}

func (p *Participant) Value() HandValue {
	return HandTotal(p.Hand)
}

func (p *Participant) Total() int {
	return HandTotal(p.Hand).Total
}

func (p *Participant) IsBusted() bool {
	return p.Total() > BustLimit
}

func (p *Participant) IsPlayer() bool { return p.Role == RolePlayer }
func (p *Participant) IsDealer() bool { return p.Role == RoleDealer }

func (p *Participant) AddToWinnings() {
	if !p.IsPlayer() {
		return
	}
	p.Bankroll += p.BetSize
}

func (p *Participant) DeductFromWinnings() {
	if !p.IsPlayer() {
		return
	}
	p.Bankroll -= p.BetSize
}

func (p *Participant) IsBroke() bool {
	return p.IsPlayer() && p.Bankroll <= BrokeThreshold
}

func (p *Participant) IsRich() bool {
	return p.IsPlayer() && p.Bankroll >= p.RichThreshold
}

// CardView is the display form of a dealt card. Value is the card's effective
// contribution to the hand total, so a downgraded ace shows 1.
type CardView struct {
	Rank  string `json:"rank"`
	Suit  string `json:"suit"`
	Value int    `json:"value"`
	Title string `json:"title"`
}

// HandDisplay lists the hand in deal order. Aces counted low are the earliest
// dealt ones.
func (p *Participant) HandDisplay() []CardView {
	lowAces := p.Value().LowAces
	out := make([]CardView, 0, len(p.Hand))
	for _, c := range p.Hand {
		value := c.Value()
		if c.IsAce() && lowAces > 0 {
			value = common.LowAceValue
			lowAces--
		}
		out = append(out, CardView{
			Rank:  c.RankName(),
			Suit:  c.SuitName(),
			Value: value,
			Title: c.Title(),
		})
	}
	return out
}
