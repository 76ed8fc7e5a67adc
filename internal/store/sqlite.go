package store

import (
	"context"
	"database/sql"
	"strings"

	"twenty-one-go/internal/game/twentyone"
	"twenty-one-go/internal/models"
	"twenty-one-go/internal/tracing"
)

// SQLiteStore keeps each game as a row in the games table.
type SQLiteStore struct {
	db   *sql.DB
	opts []twentyone.Option
}

// NewSQLite returns a store over db. opts are applied to every game it loads.
func NewSQLite(db *sql.DB, opts ...twentyone.Option) *SQLiteStore {
	return &SQLiteStore{db: db, opts: opts}
}

func (s *SQLiteStore) row(userID int64, g *twentyone.Game) (models.GameRow, error) {
	state, err := encodeGame(g)
	if err != nil {
		return models.GameRow{}, err
	}
	return models.GameRow{
		ID:           g.ID,
		UserID:       userID,
		Title:        g.Title,
		Stage:        string(g.Stage),
		Bankroll:     int64(g.Player.Bankroll),
		StateJSON:    state,
		LastPlayedAt: g.LastPlayed,
	}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, userID int64, g *twentyone.Game) error {
	ctx, span := startGameSpan(ctx, "store.sqlite.Create", userID, g)
	defer span.End()
	r, err := s.row(userID, g)
	if err != nil {
		return err
	}
	return models.InsertGame(ctx, s.db, r)
}

func (s *SQLiteStore) Get(ctx context.Context, userID int64, id string) (*twentyone.Game, error) {
	ctx, span := tracing.StartSpan(ctx, "store.sqlite.Get", tracing.Game(userID, id)...)
	defer span.End()
	r, err := models.GetGame(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	return decodeGame(r.StateJSON, s.opts)
}

func (s *SQLiteStore) List(ctx context.Context, userID int64) ([]*twentyone.Game, error) {
	ctx, span := tracing.StartSpan(ctx, "store.sqlite.List", tracing.UserIDKey.Int64(userID))
	defer span.End()
	rows, err := models.ListGamesByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	games := make([]*twentyone.Game, 0, len(rows))
	for _, r := range rows {
		g, err := decodeGame(r.StateJSON, s.opts)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return twentyone.SortGames(games), nil
}

func (s *SQLiteStore) Save(ctx context.Context, userID int64, g *twentyone.Game) error {
	ctx, span := startGameSpan(ctx, "store.sqlite.Save", userID, g)
	defer span.End()
	r, err := s.row(userID, g)
	if err != nil {
		return err
	}
	return models.UpdateGameState(ctx, s.db, r)
}

func (s *SQLiteStore) Delete(ctx context.Context, userID int64, id string) error {
	ctx, span := tracing.StartSpan(ctx, "store.sqlite.Delete", tracing.Game(userID, id)...)
	defer span.End()
	return models.DeleteGame(ctx, s.db, userID, id)
}

func (s *SQLiteStore) TitleExists(ctx context.Context, userID int64, title string) (bool, error) {
	return models.GameTitleTaken(ctx, s.db, userID, strings.TrimSpace(title))
}
