// Package level holds the per-difficulty wave tables. The tables are
// immutable after process start, shared read-only by every session.
package level

import "fmt"

// WaveDef configures one wave of a level.
type WaveDef struct {
	EnemyCount         int
	SpawnIntervalTicks int
	SpeedBonus         float64
}

// Level is one selectable difficulty with its ordered waves.
type Level struct {
	ID    int
	Name  string
	Waves []WaveDef
}

// Validate checks the table invariants.
func (l Level) Validate() error {
	if len(l.Waves) == 0 {
		return fmt.Errorf("level %d (%s) has no waves", l.ID, l.Name)
	}
	for i, w := range l.Waves {
		if w.EnemyCount < 1 {
			return fmt.Errorf("level %d wave %d has enemy count %d", l.ID, i, w.EnemyCount)
		}
		if w.SpawnIntervalTicks < 1 {
			return fmt.Errorf("level %d wave %d has spawn interval %d", l.ID, i, w.SpawnIntervalTicks)
		}
	}
	return nil
}

// DefaultLevels returns the built-in difficulty tables.
func DefaultLevels() map[int]Level {
	return map[int]Level{
		1: {
			ID:   1,
			Name: "Principiante",
			Waves: []WaveDef{
				{EnemyCount: 15, SpawnIntervalTicks: 3, SpeedBonus: 0},
				{EnemyCount: 20, SpawnIntervalTicks: 2, SpeedBonus: 0},
				{EnemyCount: 25, SpawnIntervalTicks: 2, SpeedBonus: 0.5},
			},
		},
		2: {
			ID:   2,
			Name: "Intermedio",
			Waves: []WaveDef{
				{EnemyCount: 20, SpawnIntervalTicks: 3, SpeedBonus: 0},
				{EnemyCount: 25, SpawnIntervalTicks: 2, SpeedBonus: 0},
				{EnemyCount: 30, SpawnIntervalTicks: 2, SpeedBonus: 0.5},
				{EnemyCount: 35, SpawnIntervalTicks: 2, SpeedBonus: 0.5},
			},
		},
		3: {
			ID:   3,
			Name: "Avanzado",
			Waves: []WaveDef{
				{EnemyCount: 25, SpawnIntervalTicks: 2, SpeedBonus: 0},
				{EnemyCount: 30, SpawnIntervalTicks: 2, SpeedBonus: 0.5},
				{EnemyCount: 35, SpawnIntervalTicks: 1, SpeedBonus: 0.5},
				{EnemyCount: 40, SpawnIntervalTicks: 1, SpeedBonus: 1},
				{EnemyCount: 50, SpawnIntervalTicks: 1, SpeedBonus: 1.5},
			},
		},
		4: {
			ID:   4,
			Name: "Experto",
			Waves: []WaveDef{
				{EnemyCount: 30, SpawnIntervalTicks: 2, SpeedBonus: 0.5},
				{EnemyCount: 40, SpawnIntervalTicks: 1, SpeedBonus: 1},
				{EnemyCount: 50, SpawnIntervalTicks: 1, SpeedBonus: 1},
				{EnemyCount: 60, SpawnIntervalTicks: 1, SpeedBonus: 1.5},
				{EnemyCount: 75, SpawnIntervalTicks: 1, SpeedBonus: 2},
				{EnemyCount: 100, SpawnIntervalTicks: 1, SpeedBonus: 2.5},
			},
		},
	}
}
