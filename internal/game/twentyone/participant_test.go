package twentyone

import (
	"testing"

	"twenty-one-go/internal/game/common"
)

func TestHandTotal(t *testing.T) {
	tests := []struct {
		name    string
		cards   []string
		total   int
		lowAces int
	}{
		{"empty", nil, 0, 0},
		{"pair of tens", []string{"10S", "KH"}, 20, 0},
		{"natural", []string{"AS", "KH"}, 21, 0},
		{"ace demoted", []string{"AS", "KH", "5D"}, 16, 1},
		{"two aces", []string{"AS", "AH"}, 12, 1},
		{"soft seventeen", []string{"AC", "6D"}, 17, 0},
		{"four aces", []string{"AS", "AH", "AD", "AC"}, 14, 3},
		{"bust without aces", []string{"10S", "KH", "5D"}, 25, 0},
		{"bust with low ace", []string{"AS", "KH", "5D", "9C"}, 25, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := HandTotal(common.MustParseCards(tt.cards...))
			if v.Total != tt.total {
				t.Fatalf("total = %d, want %d", v.Total, tt.total)
			}
			if v.LowAces != tt.lowAces {
				t.Fatalf("low aces = %d, want %d", v.LowAces, tt.lowAces)
			}
		})
	}
}

func TestHandTotalIsOrderIndependent(t *testing.T) {
	hand := common.MustParseCards("AS", "AH", "9D", "KC")
	want := HandTotal(hand).Total
	if want != 21 {
		t.Fatalf("expected 21, got %d", want)
	}
	permute(hand, 0, func(p []common.Card) {
		if got := HandTotal(p).Total; got != want {
			t.Fatalf("permutation %v total = %d, want %d", p, got, want)
		}
	})
}

func permute(cards []common.Card, k int, visit func([]common.Card)) {
	if k == len(cards) {
		visit(cards)
		return
	}
	for i := k; i < len(cards); i++ {
		cards[k], cards[i] = cards[i], cards[k]
		permute(cards, k+1, visit)
		cards[k], cards[i] = cards[i], cards[k]
	}
}

func TestTotalDoesNotChangeCards(t *testing.T) {
	p := NewPlayer(1, 10, 10)
	for _, c := range common.MustParseCards("AS", "KH", "5D") {
		p.AddCard(c)
	}
	before := append([]common.Card(nil), p.Hand...)
	for i := 0; i < 3; i++ {
		if got := p.Total(); got != 16 {
			t.Fatalf("call %d: total = %d, want 16", i, got)
		}
	}
	for i := range before {
		if p.Hand[i] != before[i] || p.Hand[i].Value() != before[i].Value() {
			t.Fatalf("card %d changed from %v to %v", i, before[i], p.Hand[i])
		}
	}
}

func TestIsBusted(t *testing.T) {
	p := NewPlayer(1, 10, 10)
	for _, c := range common.MustParseCards("10S", "KH") {
		p.AddCard(c)
	}
	if p.IsBusted() {
		t.Fatal("20 should not bust")
	}
	p.AddCard(common.Card{Rank: 2, Suit: common.Clubs})
	if !p.IsBusted() {
		t.Fatal("22 should bust")
	}
	p.ClearHand()
	if len(p.Hand) != 0 || p.Total() != 0 {
		t.Fatalf("clear hand left %v", p.Hand)
	}
}

func TestHandDisplayShowsEffectiveAceValue(t *testing.T) {
	p := NewDealer(DefaultHitThreshold)
	for _, c := range common.MustParseCards("AS", "KH", "AD") {
		p.AddCard(c)
	}
	// 11 + 10 + 11 = 32 -> both aces counted low -> 12
	if got := p.Total(); got != 12 {
		t.Fatalf("total = %d, want 12", got)
	}
	view := p.HandDisplay()
	if len(view) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(view))
	}
	if view[0].Value != 1 || view[2].Value != 1 || view[1].Value != 10 {
		t.Fatalf("unexpected display values: %+v", view)
	}
	if view[0].Title != "A of Spades" || view[0].Rank != "A" || view[0].Suit != "Spades" {
		t.Fatalf("unexpected first card view: %+v", view[0])
	}
}

func TestWinnings(t *testing.T) {
	p := NewPlayer(1, 10, 10)
	p.AddToWinnings()
	if p.Bankroll != 11 {
		t.Fatalf("bankroll = %d, want 11", p.Bankroll)
	}
	p.DeductFromWinnings()
	p.DeductFromWinnings()
	if p.Bankroll != 9 {
		t.Fatalf("bankroll = %d, want 9", p.Bankroll)
	}

	d := NewDealer(17)
	d.AddToWinnings()
	if d.Bankroll != 0 {
		t.Fatal("dealer should not hold a bankroll")
	}
}

func TestBrokeAndRich(t *testing.T) {
	tests := []struct {
		bankroll int
		ceiling  int
		broke    bool
		rich     bool
	}{
		{bankroll: -1, ceiling: 10, broke: true},
		{bankroll: 0, ceiling: 10, broke: true},
		{bankroll: 1, ceiling: 10},
		{bankroll: 9, ceiling: 10},
		{bankroll: 10, ceiling: 10, rich: true},
		{bankroll: 25, ceiling: 30},
		{bankroll: 30, ceiling: 30, rich: true},
	}
	for _, tt := range tests {
		p := NewPlayer(1, tt.bankroll, tt.ceiling)
		if p.IsBroke() != tt.broke {
			t.Fatalf("bankroll %d: IsBroke = %v, want %v", tt.bankroll, p.IsBroke(), tt.broke)
		}
		if p.IsRich() != tt.rich {
			t.Fatalf("bankroll %d ceiling %d: IsRich = %v, want %v", tt.bankroll, tt.ceiling, p.IsRich(), tt.rich)
		}
	}
}
