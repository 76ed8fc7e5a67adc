package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"twenty-one-go/internal/database"
	"twenty-one-go/internal/game/twentyone"
	"twenty-one-go/internal/models"
)

func newGame(t *testing.T, title string, played time.Time) *twentyone.Game {
	t.Helper()
	g, err := twentyone.New(uuid.NewString(), title, 1, 10, twentyone.DefaultRules(),
		twentyone.WithClock(func() time.Time { return played }))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

// exerciseStore runs the behaviour every GameStore must share. alice and bob
// must be distinct existing users.
func exerciseStore(t *testing.T, s GameStore, alice, bob int64) {
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	older := newGame(t, "Older", base)
	newer := newGame(t, "Newer", base.Add(time.Hour))
	for _, g := range []*twentyone.Game{older, newer} {
		if err := s.Create(ctx, alice, g); err != nil {
			t.Fatalf("create %s: %v", g.Title, err)
		}
	}

	if err := s.Create(ctx, alice, newGame(t, "Older", base)); !errors.Is(err, models.ErrDuplicateTitle) {
		t.Fatalf("duplicate title err = %v", err)
	}
	if err := s.Create(ctx, bob, newGame(t, "Older", base)); err != nil {
		t.Fatalf("same title for another user: %v", err)
	}
	exists, err := s.TitleExists(ctx, alice, " Newer ")
	if err != nil || !exists {
		t.Fatalf("title exists = %v, %v", exists, err)
	}

	// play a round on the older game and save it
	g, err := s.Get(ctx, alice, older.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := g.StartRound(); err != nil {
		t.Fatalf("start round: %v", err)
	}
	if err := s.Save(ctx, alice, g); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := s.Get(ctx, alice, older.ID)
	if err != nil {
		t.Fatalf("get after save: %v", err)
	}
	if back.Stage != twentyone.StagePlayerTurn || len(back.Player.Hand) != 2 || len(back.Dealer.Hand) != 2 {
		t.Fatalf("restored stage %s hands %v / %v", back.Stage, back.Player.Hand, back.Dealer.Hand)
	}
	if back.Deck.Len() != 48 {
		t.Fatalf("restored deck has %d cards", back.Deck.Len())
	}

	if _, err := s.Get(ctx, bob, older.ID); !errors.Is(err, models.ErrGameNotFound) {
		t.Fatalf("foreign get err = %v", err)
	}
	if err := s.Save(ctx, bob, g); !errors.Is(err, models.ErrGameNotFound) {
		t.Fatalf("foreign save err = %v", err)
	}

	// bust the newer game's player so it sorts last
	broke, err := s.Get(ctx, alice, newer.ID)
	if err != nil {
		t.Fatalf("get newer: %v", err)
	}
	broke.Player.Bankroll = 0
	if err := s.Save(ctx, alice, broke); err != nil {
		t.Fatalf("save broke: %v", err)
	}
	list, err := s.List(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != older.ID || list[1].ID != newer.ID {
		t.Fatalf("list order = %v", titles(list))
	}

	if err := s.Delete(ctx, bob, older.ID); !errors.Is(err, models.ErrGameNotFound) {
		t.Fatalf("foreign delete err = %v", err)
	}
	if err := s.Delete(ctx, alice, older.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, alice, older.ID); !errors.Is(err, models.ErrGameNotFound) {
		t.Fatalf("get deleted err = %v", err)
	}
	// the title is free again once the game is gone
	if err := s.Create(ctx, alice, newGame(t, "Older", base)); err != nil {
		t.Fatalf("recreate title: %v", err)
	}
}

func titles(games []*twentyone.Game) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.Title)
	}
	return out
}

func TestSQLiteStore(t *testing.T) {
	db, err := database.OpenAndMigrate(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	alice, err := models.CreateUser(db, "alice", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	bob, err := models.CreateUser(db, "bob", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	exerciseStore(t, NewSQLite(db), alice.ID, bob.ID)
}

func TestSQLiteStoreRejectsCorruptState(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenAndMigrate(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	u, err := models.CreateUser(db, "alice", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := models.InsertGame(ctx, db, models.GameRow{
		ID: "bad", UserID: u.ID, Title: "Bad", Stage: "awaiting_bet", StateJSON: `{"id":`, LastPlayedAt: time.Now(),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := NewSQLite(db).Get(ctx, u.ID, "bad"); !errors.Is(err, models.ErrInvalidGameRecord) {
		t.Fatalf("err = %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	rdb, err := OpenRedis(ctx, url)
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	prefix := "tw1test:" + uuid.NewString()
	t.Cleanup(func() {
		keys, _ := rdb.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			_ = rdb.Del(ctx, keys...).Err()
		}
	})
	exerciseStore(t, NewRedis(rdb, prefix), 1, 2)
}
