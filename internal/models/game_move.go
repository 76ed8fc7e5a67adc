package models

import (
	"database/sql"
	"time"
)

const (
	ActorPlayer = "player"
	ActorDealer = "dealer"
)

const (
	MoveBet     = "bet"
	MoveHit     = "hit"
	MoveStay    = "stay"
	MoveBust    = "bust"
	MoveResolve = "resolve"
)

// GameMove is one entry in a game's move log. Card is the card drawn by a
// hit, HandTotal the actor's total after the move.
type GameMove struct {
	ID        int64     `json:"id"`
	GameID    string    `json:"game_id"`
	UserID    int64     `json:"user_id"`
	Actor     string    `json:"actor"`
	MoveType  string    `json:"move_type"`
	Card      *string   `json:"card,omitempty"`
	HandTotal *int64    `json:"hand_total,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const insertMoveSQL = `INSERT INTO game_moves(game_id, user_id, actor, move_type, card, hand_total) VALUES (?, ?, ?, ?, ?, ?)`

func InsertMove(db *sql.DB, m GameMove) error {
	_, err := db.Exec(insertMoveSQL, m.GameID, m.UserID, m.Actor, m.MoveType, m.Card, m.HandTotal)
	return err
}

// InsertMovesTx writes a batch of moves, e.g. a whole dealer turn.
func InsertMovesTx(tx *sql.Tx, moves []GameMove) error {
	if len(moves) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(insertMoveSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, m := range moves {
		if _, err := stmt.Exec(m.GameID, m.UserID, m.Actor, m.MoveType, m.Card, m.HandTotal); err != nil {
			return err
		}
	}
	return nil
}

// ListMovesByGame returns the most recent moves, oldest first.
func ListMovesByGame(db *sql.DB, userID int64, gameID string, limit int64) ([]GameMove, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	rows, err := db.Query(
		`SELECT id, game_id, user_id, actor, move_type, card, hand_total, created_at FROM (
		   SELECT * FROM game_moves WHERE game_id = ? AND user_id = ? ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`,
		gameID, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameMove{}
	for rows.Next() {
		var m GameMove
		var card sql.NullString
		var total sql.NullInt64
		if err := rows.Scan(&m.ID, &m.GameID, &m.UserID, &m.Actor, &m.MoveType, &card, &total, &m.CreatedAt); err != nil {
			return nil, err
		}
		if card.Valid {
			v := card.String
			m.Card = &v
		}
		if total.Valid {
			v := total.Int64
			m.HandTotal = &v
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func DeleteMovesByGame(db *sql.DB, userID int64, gameID string) error {
	_, err := db.Exec(`DELETE FROM game_moves WHERE game_id = ? AND user_id = ?`, gameID, userID)
	return err
}
