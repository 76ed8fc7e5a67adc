package common

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"
)

const StandardDeckSize = 52

var ErrEmptyDeck = errors.New("empty deck")

// Source picks a uniform integer in [0, n). *math/rand/v2.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

func NewStandardDeck() []Card {
	deck := make([]Card, 0, StandardDeckSize)
	for _, s := range Suits {
		for r := Ace; r <= King; r++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Deck is an ordered card sequence; the top of the deck is the end of the slice.
type Deck struct {
	cards []Card
	src   Source
}

// NewDeck returns a full, shuffled deck. A nil source uses crypto/rand.
func NewDeck(src Source) *Deck {
	if src == nil {
		src = CryptoSource{}
	}
	d := &Deck{src: src}
	d.Reset()
	return d
}

// NewDeckFromCards returns an unshuffled deck that deals cards in the order given.
func NewDeckFromCards(cards ...Card) *Deck {
	d := &Deck{src: CryptoSource{}, cards: make([]Card, len(cards))}
	for i, c := range cards {
		d.cards[len(cards)-1-i] = c
	}
	return d
}

// Reset rebuilds all 52 cards in canonical order and shuffles them.
func (d *Deck) Reset() {
	d.cards = NewStandardDeck()
	d.Shuffle()
}

// Shuffle applies a Fisher–Yates permutation using the deck's source.
func (d *Deck) Shuffle() {
	src := d.src
	if src == nil {
		src = CryptoSource{}
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

func (d *Deck) DealCard() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, nil
}

// Remove drops every given card still present in the deck. Order of the
// remaining cards is preserved.
func (d *Deck) Remove(cards ...Card) {
	if len(cards) == 0 {
		return
	}
	drop := make(map[Card]bool, len(cards))
	for _, c := range cards {
		drop[c] = true
	}
	kept := d.cards[:0]
	for _, c := range d.cards {
		if !drop[c] {
			kept = append(kept, c)
		}
	}
	d.cards = kept
}

func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, bottom first.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// CryptoSource draws from crypto/rand. If crypto/rand fails, it falls back to
// a time-seeded LCG so shuffling never stalls a round.
type CryptoSource struct{}

func (CryptoSource) IntN(n int) int {
	if n <= 1 {
		return 0
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return fallbackIntN(n)
	}
	return int(nBig.Int64())
}

func fallbackIntN(n int) int {
	// Predictable; only used if crypto/rand fails.
	seed := time.Now().UnixNano()
	seed = (seed*6364136223846793005 + 1) & 0x7fffffffffffffff
	return int(seed % int64(n))
}
