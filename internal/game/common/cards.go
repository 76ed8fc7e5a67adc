package common

import (
	"fmt"
	"strings"
)

type Suit string

const (
	Spades   Suit = "S"
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
)

// Suits lists the four suits in canonical deck order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

func (s Suit) Name() string {
	switch s {
	case Spades:
		return "Spades"
	case Hearts:
		return "Hearts"
	case Diamonds:
		return "Diamonds"
	case Clubs:
		return "Clubs"
	default:
		return "?"
	}
}

type Rank int

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

// Point values used by twenty-one scoring.
const (
	LowAceValue   = 1
	HighAceValue  = 11
	FaceCardValue = 10
)

type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func (c Card) String() string {
	return c.RankName() + string(c.Suit)
}

// RankName is the rank as printed on the card face ("A", "7", "10", "K").
func (c Card) RankName() string {
	switch c.Rank {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return fmt.Sprintf("%d", int(c.Rank))
	}
}

func (c Card) SuitName() string {
	return c.Suit.Name()
}

// Title renders the card the way the table shows it, e.g. "Q of Hearts".
func (c Card) Title() string {
	return c.RankName() + " of " + c.SuitName()
}

// Value is the card's twenty-one point value. Aces report their high value;
// counting an ace low is the hand's decision, never the card's.
func (c Card) Value() int {
	switch {
	case c.Rank == Ace:
		return HighAceValue
	case c.Rank >= Jack:
		return FaceCardValue
	default:
		return int(c.Rank)
	}
}

func (c Card) IsAce() bool {
	return c.Rank == Ace
}

func (c Card) Valid() bool {
	if c.Rank < Ace || c.Rank > King {
		return false
	}
	switch c.Suit {
	case Spades, Hearts, Diamonds, Clubs:
		return true
	default:
		return false
	}
}

func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card")
	}
	suit := Suit(s[len(s)-1:])
	rankStr := s[:len(s)-1]
	var r Rank
	switch rankStr {
	case "A":
		r = Ace
	case "J":
		r = Jack
	case "Q":
		r = Queen
	case "K":
		r = King
	default:
		var v int
		_, err := fmt.Sscanf(rankStr, "%d", &v)
		if err != nil || v < 2 || v > 10 {
			return Card{}, fmt.Errorf("invalid rank")
		}
		r = Rank(v)
	}
	switch suit {
	case Spades, Hearts, Diamonds, Clubs:
	default:
		return Card{}, fmt.Errorf("invalid suit")
	}
	return Card{Rank: r, Suit: suit}, nil
}

// MustParseCards parses a list of short card strings and panics on bad input.
// Intended for fixtures.
func MustParseCards(ss ...string) []Card {
	out := make([]Card, 0, len(ss))
	for _, s := range ss {
		c, err := ParseCard(s)
		if err != nil {
			panic(fmt.Sprintf("parse card %q: %v", s, err))
		}
		out = append(out, c)
	}
	return out
}
