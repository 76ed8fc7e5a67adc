package models

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
)

// GameRow is one stored twenty-one game. StateJSON holds the serialized
// engine record; Stage and Bankroll are copied out of it for listing.
type GameRow struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	Title        string    `json:"title"`
	Stage        string    `json:"stage"`
	Bankroll     int64     `json:"bankroll"`
	StateJSON    string    `json:"-"`
	LastPlayedAt time.Time `json:"last_played_at"`
	CreatedAt    time.Time `json:"created_at"`
}

const gameColumns = `id, user_id, title, stage, bankroll, state_json, last_played_at, created_at`

func InsertGame(ctx context.Context, db *sql.DB, g GameRow) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO games(id, user_id, title, stage, bankroll, state_json, last_played_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Title, g.Stage, g.Bankroll, g.StateJSON, g.LastPlayedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return ErrDuplicateTitle
	}
	return err
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure. Primary
// key and NOT NULL failures carry other extended codes.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

// GetGame loads a game owned by userID. Games belonging to someone else are
// reported as missing.
func GetGame(ctx context.Context, db *sql.DB, userID int64, id string) (*GameRow, error) {
	var g GameRow
	err := db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&g.ID, &g.UserID, &g.Title, &g.Stage, &g.Bankroll, &g.StateJSON, &g.LastPlayedAt, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func ListGamesByUser(ctx context.Context, db *sql.DB, userID int64) ([]GameRow, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE user_id = ? ORDER BY last_played_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameRow
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Stage, &g.Bankroll, &g.StateJSON, &g.LastPlayedAt, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func UpdateGameState(ctx context.Context, db *sql.DB, g GameRow) error {
	res, err := db.ExecContext(ctx,
		`UPDATE games SET stage = ?, bankroll = ?, state_json = ?, last_played_at = ? WHERE id = ? AND user_id = ?`,
		g.Stage, g.Bankroll, g.StateJSON, g.LastPlayedAt.UTC(), g.ID, g.UserID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrGameNotFound)
}

func DeleteGame(ctx context.Context, db *sql.DB, userID int64, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM games WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrGameNotFound)
}

func GameTitleTaken(ctx context.Context, db *sql.DB, userID int64, title string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM games WHERE user_id = ? AND title = ?`, userID, title).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
