// Package storage persists players, match results, the question bank,
// and the enemy templates behind small repository types.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite opens the local SQLite database and creates the schemas
// the game server needs.
func InitSQLite(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			bonus_lives INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id INTEGER NOT NULL,
			level_id INTEGER NOT NULL,
			final_score INTEGER NOT NULL,
			played_at DATETIME NOT NULL,
			FOREIGN KEY (player_id) REFERENCES players(id)
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level_id INTEGER NOT NULL,
			statement TEXT NOT NULL,
			correct_answer TEXT NOT NULL,
			distractor_b TEXT NOT NULL,
			distractor_c TEXT NOT NULL,
			distractor_d TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS enemy_types (
			name TEXT PRIMARY KEY,
			base_speed REAL NOT NULL,
			score_value INTEGER NOT NULL,
			spawn_weight REAL NOT NULL,
			difficulty_tier INTEGER NOT NULL,
			min_level INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS daily_questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_date TEXT NOT NULL UNIQUE,
			statement TEXT NOT NULL,
			correct_answer TEXT NOT NULL,
			distractor_b TEXT NOT NULL,
			distractor_c TEXT NOT NULL,
			distractor_d TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_score ON matches(final_score DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_player ON matches(player_id);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_level ON questions(level_id);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
