package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/derivaventura/server/internal/domain/enemy"
)

// EnemyTypeRepository loads the enemy template table.
type EnemyTypeRepository struct {
	db *sql.DB
}

func NewEnemyTypeRepository(db *sql.DB) *EnemyTypeRepository {
	return &EnemyTypeRepository{db: db}
}

// All returns every enemy template.
func (r *EnemyTypeRepository) All(ctx context.Context) ([]enemy.TypeDef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, base_speed, score_value, spawn_weight, difficulty_tier, min_level
		 FROM enemy_types ORDER BY difficulty_tier ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query enemy types: %w", err)
	}
	defer rows.Close()

	var defs []enemy.TypeDef
	for rows.Next() {
		var d enemy.TypeDef
		if err := rows.Scan(&d.Name, &d.BaseSpeed, &d.ScoreValue, &d.SpawnWeight,
			&d.DifficultyTier, &d.MinLevel); err != nil {
			return nil, fmt.Errorf("failed to scan enemy type: %w", err)
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// Insert adds one enemy template.
func (r *EnemyTypeRepository) Insert(ctx context.Context, d enemy.TypeDef) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO enemy_types (name, base_speed, score_value, spawn_weight, difficulty_tier, min_level)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.Name, d.BaseSpeed, d.ScoreValue, d.SpawnWeight, d.DifficultyTier, d.MinLevel,
	)
	if err != nil {
		return fmt.Errorf("failed to insert enemy type %q: %w", d.Name, err)
	}
	return nil
}
