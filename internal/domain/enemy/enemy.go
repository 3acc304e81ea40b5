// Package enemy defines the enemy type catalog, the weighted selector
// that skews later waves toward harder types, and the live Enemy
// entity owned by a game session.
package enemy

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/samber/lo"

	"github.com/derivaventura/server/internal/domain/question"
)

// TypeDef describes one enemy template. Loaded once at process start
// and read-only afterwards.
type TypeDef struct {
	Name           string
	BaseSpeed      float64
	ScoreValue     int
	SpawnWeight    float64
	DifficultyTier int // 1 (lowest) to 5
	MinLevel       int
}

// Enemy is one live attacker. Its ID is the ID of the question it
// carries; eliminating the enemy resolves the question.
type Enemy struct {
	ID         int64
	Question   question.Question
	TypeName   string
	Speed      float64
	ScoreValue int
	Position   float64
}

// Catalog holds the immutable enemy type table, ordered by tier.
type Catalog struct {
	defs   []TypeDef
	byName map[string]TypeDef
}

// NewCatalog validates and indexes the given type definitions.
func NewCatalog(defs []TypeDef) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("enemy catalog is empty")
	}
	byName := make(map[string]TypeDef, len(defs))
	for _, d := range defs {
		if d.SpawnWeight <= 0 {
			return nil, fmt.Errorf("enemy type %q has non-positive spawn weight %v", d.Name, d.SpawnWeight)
		}
		if d.DifficultyTier < 1 || d.DifficultyTier > 5 {
			return nil, fmt.Errorf("enemy type %q has difficulty tier %d outside 1-5", d.Name, d.DifficultyTier)
		}
		if _, dup := byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate enemy type %q", d.Name)
		}
		byName[d.Name] = d
	}
	ordered := append([]TypeDef(nil), defs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DifficultyTier < ordered[j].DifficultyTier
	})
	return &Catalog{defs: ordered, byName: byName}, nil
}

// DefaultDefs returns the built-in type table, used to seed the
// enemy_types storage when it is empty.
func DefaultDefs() []TypeDef {
	return []TypeDef{
		{Name: "Zombie Normal", BaseSpeed: 1.0, ScoreValue: 10, SpawnWeight: 70, DifficultyTier: 1, MinLevel: 1},
		{Name: "Zombie Cono", BaseSpeed: 1.2, ScoreValue: 20, SpawnWeight: 20, DifficultyTier: 2, MinLevel: 1},
		{Name: "Zombie Cubeta", BaseSpeed: 0.8, ScoreValue: 35, SpawnWeight: 8, DifficultyTier: 3, MinLevel: 2},
		{Name: "Zombie Futbolista", BaseSpeed: 1.5, ScoreValue: 50, SpawnWeight: 1.5, DifficultyTier: 4, MinLevel: 3},
		{Name: "Zombie Gigante", BaseSpeed: 0.6, ScoreValue: 80, SpawnWeight: 0.5, DifficultyTier: 5, MinLevel: 4},
	}
}

// ByName looks up a type definition.
func (c *Catalog) ByName(name string) (TypeDef, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// Defs returns the type table ordered by tier.
func (c *Catalog) Defs() []TypeDef {
	return c.defs
}

// Lowest returns the lowest-tier type, the selector's fallback.
func (c *Catalog) Lowest() TypeDef {
	return c.defs[0]
}

// Selector performs the weighted random type draw. It is pure over
// the injected randomness source, so tests can seed it.
type Selector struct {
	catalog *Catalog
	rng     *rand.Rand
}

// NewSelector creates a selector over the given catalog.
func NewSelector(catalog *Catalog, rng *rand.Rand) *Selector {
	return &Selector{catalog: catalog, rng: rng}
}

// SelectType draws an enemy type for the given level and 1-based wave
// number. Later waves multiply the weights of harder tiers up and
// easier tiers down before the cumulative draw.
func (s *Selector) SelectType(level, waveNumber int) TypeDef {
	available := lo.Filter(s.catalog.Defs(), func(d TypeDef, _ int) bool {
		return d.MinLevel <= level
	})
	if len(available) == 0 {
		return s.catalog.Lowest()
	}

	weights := make([]float64, len(available))
	total := 0.0
	for i, d := range available {
		w := d.SpawnWeight
		if waveNumber >= 3 {
			if d.DifficultyTier >= 3 {
				w *= 2
			}
			if d.DifficultyTier <= 2 {
				w *= 0.7
			}
		}
		if waveNumber >= 5 {
			if d.DifficultyTier >= 4 {
				w *= 1.5
			}
			if d.DifficultyTier <= 2 {
				w *= 0.5
			}
		}
		weights[i] = w
		total += w
	}

	draw := s.rng.Float64() * total
	for i, d := range available {
		draw -= weights[i]
		if draw <= 0 {
			return d
		}
	}
	return available[0]
}
