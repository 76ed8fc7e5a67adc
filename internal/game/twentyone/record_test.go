package twentyone

import (
	"encoding/json"
	"errors"
	"testing"

	"twenty-one-go/internal/game/common"
	"twenty-one-go/internal/models"
)

func TestRecordRestoresHandInProgress(t *testing.T) {
	g := newTestGame(t, 7)
	stageHands(g, StagePlayerTurn, []string{"AS", "5H"}, []string{"KD", "7C"})

	raw, err := json.Marshal(g.Record())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	back, err := FromRecord(r)
	if err != nil {
		t.Fatalf("from record: %v", err)
	}

	if back.ID != g.ID || back.Title != g.Title || back.Stage != StagePlayerTurn {
		t.Fatalf("restored %s %q %s", back.ID, back.Title, back.Stage)
	}
	if back.Player.Bankroll != 7 || back.Player.BetSize != 1 || back.Player.RichThreshold != DefaultRichThreshold {
		t.Fatalf("player = %+v", back.Player)
	}
	if back.Dealer.HitThreshold != DefaultHitThreshold {
		t.Fatalf("dealer threshold = %d", back.Dealer.HitThreshold)
	}
	if back.Player.Total() != 16 || back.Dealer.Total() != 17 {
		t.Fatalf("totals %d / %d", back.Player.Total(), back.Dealer.Total())
	}
	if !back.LastPlayed.Equal(g.LastPlayed) {
		t.Fatalf("last played %v != %v", back.LastPlayed, g.LastPlayed)
	}

	if back.Deck.Len() != common.StandardDeckSize-4 {
		t.Fatalf("deck has %d cards", back.Deck.Len())
	}
	seen := map[common.Card]bool{}
	for _, c := range allCards(back) {
		if seen[c] {
			t.Fatalf("card %s appears twice", c)
		}
		seen[c] = true
	}

	// the restored game can keep playing
	if err := back.Hit(RolePlayer); err != nil {
		t.Fatalf("hit after restore: %v", err)
	}
}

func TestRecordKeepsSettlement(t *testing.T) {
	g := newTestGame(t, 10)
	stageHands(g, StageRoundResolved, []string{"10S", "7H"}, []string{"10D", "8C"})
	if _, err := g.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	back, err := FromRecord(g.Record())
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	if !back.Settled || back.Outcome != OutcomeDealer || back.Player.Bankroll != 9 {
		t.Fatalf("restored settled=%v outcome=%q bankroll=%d", back.Settled, back.Outcome, back.Player.Bankroll)
	}
	// a settled round must not pay out again after a reload
	if _, err := back.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if back.Player.Bankroll != 9 {
		t.Fatalf("bankroll = %d", back.Player.Bankroll)
	}
	if err := back.StartRound(); err != nil {
		t.Fatalf("start round after reload: %v", err)
	}
}

func TestFromRecordRejectsBadRecords(t *testing.T) {
	valid := func() Record {
		return Record{
			ID:     "g-1",
			Title:  "t",
			Stage:  StagePlayerTurn,
			Player: PlayerRecord{BetSize: 1, Bankroll: 10, Hand: common.MustParseCards("2S", "3S")},
			Dealer: DealerRecord{Hand: common.MustParseCards("4S", "5S")},
		}
	}
	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"missing id", func(r *Record) { r.ID = "" }},
		{"unknown stage", func(r *Record) { r.Stage = "shuffling" }},
		{"zero bet", func(r *Record) { r.Player.BetSize = 0 }},
		{"invalid card", func(r *Record) { r.Player.Hand = append(r.Player.Hand, common.Card{Rank: 14, Suit: common.Spades}) }},
		{"duplicate card", func(r *Record) { r.Dealer.Hand = append(r.Dealer.Hand, common.Card{Rank: 2, Suit: common.Spades}) }},
		{"dealer turn stored", func(r *Record) { r.Stage = StageDealerTurn }},
		{"dealing stored", func(r *Record) { r.Stage = StageDealing }},
		{"player turn without hands", func(r *Record) { r.Player.Hand, r.Dealer.Hand = nil, nil }},
		{"player turn short player hand", func(r *Record) { r.Player.Hand = r.Player.Hand[:1] }},
		{"resolved short dealer hand", func(r *Record) {
			r.Stage = StageRoundResolved
			r.Dealer.Hand = r.Dealer.Hand[:1]
		}},
		{"awaiting bet with hands", func(r *Record) { r.Stage = StageAwaitingBet }},
		{"empty stage with hands", func(r *Record) { r.Stage = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			if _, err := FromRecord(r); !errors.Is(err, models.ErrInvalidGameRecord) {
				t.Fatalf("err = %v", err)
			}
		})
	}

	if _, err := FromRecord(valid()); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}
}

func TestFromRecordDefaultsEmptyStage(t *testing.T) {
	g, err := FromRecord(Record{ID: "g-2", Title: "t", Player: PlayerRecord{BetSize: 1, Bankroll: 3}})
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	if g.Stage != StageAwaitingBet {
		t.Fatalf("stage = %s", g.Stage)
	}
	if g.Player.Name != PlayerName || g.Dealer.Name != DealerName {
		t.Fatalf("names %q / %q", g.Player.Name, g.Dealer.Name)
	}
}
