package models

import (
	"database/sql"
	"time"
)

// Round is a settled round. Outcome is "player", "dealer" or "push".
type Round struct {
	ID            int64     `json:"id"`
	GameID        string    `json:"game_id"`
	UserID        int64     `json:"user_id"`
	Outcome       string    `json:"outcome"`
	PlayerTotal   int64     `json:"player_total"`
	DealerTotal   int64     `json:"dealer_total"`
	Bet           int64     `json:"bet"`
	BankrollAfter int64     `json:"bankroll_after"`
	CreatedAt     time.Time `json:"created_at"`
}

func InsertRoundTx(tx *sql.Tx, r Round) error {
	_, err := tx.Exec(
		`INSERT INTO rounds(game_id, user_id, outcome, player_total, dealer_total, bet, bankroll_after) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.GameID, r.UserID, r.Outcome, r.PlayerTotal, r.DealerTotal, r.Bet, r.BankrollAfter,
	)
	return err
}

func ListRoundsByGame(db *sql.DB, userID int64, gameID string, limit int64) ([]Round, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT id, game_id, user_id, outcome, player_total, dealer_total, bet, bankroll_after, created_at
		 FROM rounds WHERE game_id = ? AND user_id = ? ORDER BY id DESC LIMIT ?`,
		gameID, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Round{}
	for rows.Next() {
		var r Round
		if err := rows.Scan(&r.ID, &r.GameID, &r.UserID, &r.Outcome, &r.PlayerTotal, &r.DealerTotal, &r.Bet, &r.BankrollAfter, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
