package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Errors callers branch on.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Player is one registered account.
type Player struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	BonusLives   int
	CreatedAt    time.Time
}

// PlayerRepository persists accounts and their bonus-life balance.
type PlayerRepository struct {
	db *sql.DB
}

func NewPlayerRepository(db *sql.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create inserts a new account and returns its id. A username or
// email collision returns ErrDuplicate.
func (r *PlayerRepository) Create(ctx context.Context, username, email, passwordHash string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO players (username, email, password_hash, bonus_lives, created_at) VALUES (?, ?, ?, 0, ?)`,
		username, email, passwordHash, time.Now(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("failed to insert player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read player id: %w", err)
	}
	return id, nil
}

// GetByUsername fetches an account for login.
func (r *PlayerRepository) GetByUsername(ctx context.Context, username string) (*Player, error) {
	var p Player
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, bonus_lives, created_at FROM players WHERE username = ?`,
		username,
	).Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.BonusLives, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query player: %w", err)
	}
	return &p, nil
}

// BonusLives reads a player's stored bonus-life count.
func (r *PlayerRepository) BonusLives(ctx context.Context, playerID int64) (int, error) {
	var lives int
	err := r.db.QueryRowContext(ctx,
		`SELECT bonus_lives FROM players WHERE id = ?`, playerID,
	).Scan(&lives)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to query bonus lives: %w", err)
	}
	return lives, nil
}

// ConsumeBonusLife decrements the stored count, never below zero.
func (r *PlayerRepository) ConsumeBonusLife(ctx context.Context, playerID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE players SET bonus_lives = bonus_lives - 1 WHERE id = ? AND bonus_lives > 0`, playerID,
	)
	if err != nil {
		return fmt.Errorf("failed to consume bonus life: %w", err)
	}
	return nil
}

// AddBonusLife credits one bonus life (daily question reward).
func (r *PlayerRepository) AddBonusLife(ctx context.Context, playerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE players SET bonus_lives = bonus_lives + 1 WHERE id = ?`, playerID,
	)
	if err != nil {
		return fmt.Errorf("failed to add bonus life: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
