package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RankingEntry is one row of the global top-scores board.
type RankingEntry struct {
	Username   string    `json:"username"`
	FinalScore int       `json:"final_score"`
	PlayedAt   time.Time `json:"played_at"`
}

// MatchRepository appends finished matches and serves the ranking.
type MatchRepository struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// RecordMatch appends one match record.
func (r *MatchRepository) RecordMatch(ctx context.Context, playerID int64, levelID, finalScore int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (player_id, level_id, final_score, played_at) VALUES (?, ?, ?, ?)`,
		playerID, levelID, finalScore, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record match: %w", err)
	}
	return nil
}

// TopScores returns the highest-scoring matches joined with usernames.
func (r *MatchRepository) TopScores(ctx context.Context, limit int) ([]RankingEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.username, m.final_score, m.played_at
		 FROM matches m
		 JOIN players p ON p.id = m.player_id
		 ORDER BY m.final_score DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking: %w", err)
	}
	defer rows.Close()

	var entries []RankingEntry
	for rows.Next() {
		var e RankingEntry
		if err := rows.Scan(&e.Username, &e.FinalScore, &e.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
