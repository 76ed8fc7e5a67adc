// Package store persists twenty-one games per user. The engine never touches
// storage itself; handlers load a game, apply a move and save it back.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"twenty-one-go/internal/game/twentyone"
	"twenty-one-go/internal/models"
	"twenty-one-go/internal/tracing"
)

const (
	KindSQLite = "sqlite"
	KindRedis  = "redis"
)

type GameStore interface {
	// Create stores a new game. A title already used by the same user fails
	// with models.ErrDuplicateTitle.
	Create(ctx context.Context, userID int64, g *twentyone.Game) error
	// Get fails with models.ErrGameNotFound when the game does not exist or
	// belongs to another user.
	Get(ctx context.Context, userID int64, id string) (*twentyone.Game, error)
	// List returns the user's games ordered by twentyone.SortGames.
	List(ctx context.Context, userID int64) ([]*twentyone.Game, error)
	Save(ctx context.Context, userID int64, g *twentyone.Game) error
	Delete(ctx context.Context, userID int64, id string) error
	TitleExists(ctx context.Context, userID int64, title string) (bool, error)
}

func encodeGame(g *twentyone.Game) (string, error) {
	b, err := json.Marshal(g.Record())
	if err != nil {
		return "", fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	return string(b), nil
}

func decodeGame(raw string, opts []twentyone.Option) (*twentyone.Game, error) {
	if raw == "" {
		return nil, models.ErrGameStateMissing
	}
	var r twentyone.Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidGameRecord, err)
	}
	return twentyone.FromRecord(r, opts...)
}

func startGameSpan(ctx context.Context, name string, userID int64, g *twentyone.Game) (context.Context, trace.Span) {
	attrs := append(tracing.Game(userID, g.ID), tracing.GameStageKey.String(string(g.Stage)))
	return tracing.StartSpan(ctx, name, attrs...)
}
