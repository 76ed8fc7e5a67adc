package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ScoreboardDay is one day of settled rounds. WinRate is cumulative within
// the requested window.
type ScoreboardDay struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	RoundsPlayed int64   `json:"rounds_played"`
	RoundsWon    int64   `json:"rounds_won"`
	WinRate      float64 `json:"win_rate"`
}

// Scoreboard summarizes a user's settled rounds across all of their games,
// including games that have since been destroyed.
type Scoreboard struct {
	UserID       int64           `json:"user_id"`
	Days         int64           `json:"days"`
	RoundsPlayed int64           `json:"rounds_played"`
	RoundsWon    int64           `json:"rounds_won"`
	RoundsLost   int64           `json:"rounds_lost"`
	RoundsPushed int64           `json:"rounds_pushed"`
	NetWinnings  int64           `json:"net_winnings"`
	WinRate      float64         `json:"win_rate"`
	Series       []ScoreboardDay `json:"series"`
}

// BuildScoreboard aggregates the rounds table for one user. days is clamped
// to [1, 365].
func BuildScoreboard(ctx context.Context, db *sql.DB, userID, days int64) (*Scoreboard, error) {
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}
	sb := &Scoreboard{UserID: userID, Days: days}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = 'player' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN outcome = 'dealer' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN outcome = 'push' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN outcome = 'player' THEN bet WHEN outcome = 'dealer' THEN -bet ELSE 0 END), 0)
		 FROM rounds WHERE user_id = ?`,
		userID,
	).Scan(&sb.RoundsPlayed, &sb.RoundsWon, &sb.RoundsLost, &sb.RoundsPushed, &sb.NetWinnings)
	if err != nil {
		return nil, fmt.Errorf("BuildScoreboard: totals: %w", err)
	}
	if sb.RoundsPlayed > 0 {
		sb.WinRate = float64(sb.RoundsWon) / float64(sb.RoundsPlayed)
	}

	type dayAgg struct {
		played int64
		won    int64
	}
	byDay := map[string]dayAgg{}
	rows, err := db.QueryContext(ctx,
		`SELECT DATE(created_at) AS day,
		        COUNT(*),
		        SUM(CASE WHEN outcome = 'player' THEN 1 ELSE 0 END)
		 FROM rounds
		 WHERE user_id = ? AND created_at >= DATE('now', ?)
		 GROUP BY DATE(created_at)`,
		userID, fmt.Sprintf("-%d days", days-1),
	)
	if err != nil {
		return nil, fmt.Errorf("BuildScoreboard: daily: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var day string
		var a dayAgg
		if err := rows.Scan(&day, &a.played, &a.won); err != nil {
			return nil, fmt.Errorf("BuildScoreboard: scan daily: %w", err)
		}
		byDay[day] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("BuildScoreboard: iterate daily: %w", err)
	}

	// Dates in UTC to match SQLite DATE('now', ...).
	start := time.Now().UTC().AddDate(0, 0, -int(days)+1)
	var cumPlayed, cumWon int64
	sb.Series = make([]ScoreboardDay, 0, days)
	for i := int64(0); i < days; i++ {
		day := start.AddDate(0, 0, int(i)).Format("2006-01-02")
		a := byDay[day]
		cumPlayed += a.played
		cumWon += a.won
		var rate float64
		if cumPlayed > 0 {
			rate = float64(cumWon) / float64(cumPlayed)
		}
		sb.Series = append(sb.Series, ScoreboardDay{
			Date:         day,
			RoundsPlayed: a.played,
			RoundsWon:    a.won,
			WinRate:      rate,
		})
	}
	return sb, nil
}
