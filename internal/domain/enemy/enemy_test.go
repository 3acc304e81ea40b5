package enemy

import (
	"math/rand"
	"testing"
)

func TestNewCatalogRejectsBadDefs(t *testing.T) {
	if _, err := NewCatalog(nil); err == nil {
		t.Error("Expected an empty catalog to be rejected")
	}

	bad := []TypeDef{{Name: "Ghost", BaseSpeed: 1, ScoreValue: 5, SpawnWeight: 0, DifficultyTier: 1, MinLevel: 1}}
	if _, err := NewCatalog(bad); err == nil {
		t.Error("Expected a zero spawn weight to be rejected")
	}

	bad = []TypeDef{{Name: "Ghost", BaseSpeed: 1, ScoreValue: 5, SpawnWeight: 1, DifficultyTier: 6, MinLevel: 1}}
	if _, err := NewCatalog(bad); err == nil {
		t.Error("Expected a difficulty tier outside 1-5 to be rejected")
	}

	dup := []TypeDef{
		{Name: "Ghost", BaseSpeed: 1, ScoreValue: 5, SpawnWeight: 1, DifficultyTier: 1, MinLevel: 1},
		{Name: "Ghost", BaseSpeed: 2, ScoreValue: 9, SpawnWeight: 1, DifficultyTier: 2, MinLevel: 1},
	}
	if _, err := NewCatalog(dup); err == nil {
		t.Error("Expected duplicate type names to be rejected")
	}
}

func TestCatalogOrdersByTier(t *testing.T) {
	catalog, err := NewCatalog(DefaultDefs())
	if err != nil {
		t.Fatalf("Unexpected catalog error: %v", err)
	}

	defs := catalog.Defs()
	for i := 1; i < len(defs); i++ {
		if defs[i-1].DifficultyTier > defs[i].DifficultyTier {
			t.Errorf("Expected defs ordered by tier, got %d before %d", defs[i-1].DifficultyTier, defs[i].DifficultyTier)
		}
	}
	if catalog.Lowest().DifficultyTier != 1 {
		t.Errorf("Expected lowest tier 1, got %d", catalog.Lowest().DifficultyTier)
	}
	if _, ok := catalog.ByName("Zombie Gigante"); !ok {
		t.Error("Expected Zombie Gigante in the default catalog")
	}
}

func TestSelectorRespectsMinLevel(t *testing.T) {
	catalog, err := NewCatalog(DefaultDefs())
	if err != nil {
		t.Fatalf("Unexpected catalog error: %v", err)
	}
	selector := NewSelector(catalog, rand.New(rand.NewSource(11)))

	for i := 0; i < 500; i++ {
		d := selector.SelectType(1, 1)
		if d.MinLevel > 1 {
			t.Fatalf("Level 1 selection produced %q with min level %d", d.Name, d.MinLevel)
		}
	}
}

func TestSelectorSkewsLaterWavesHarder(t *testing.T) {
	catalog, err := NewCatalog(DefaultDefs())
	if err != nil {
		t.Fatalf("Unexpected catalog error: %v", err)
	}
	selector := NewSelector(catalog, rand.New(rand.NewSource(23)))

	const draws = 3000
	countHard := func(wave int) int {
		hard := 0
		for i := 0; i < draws; i++ {
			if selector.SelectType(4, wave).DifficultyTier >= 3 {
				hard++
			}
		}
		return hard
	}

	earlyHard := countHard(1)
	lateHard := countHard(5)
	if lateHard <= earlyHard {
		t.Errorf("Expected wave 5 to draw more tier>=3 enemies than wave 1, got %d vs %d", lateHard, earlyHard)
	}
}
