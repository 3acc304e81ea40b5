package question

import (
	"math/rand"
	"testing"
)

func sampleBank() []Question {
	return []Question{
		{ID: 1, LevelID: 1, Statement: "f(x) = x²", CorrectAnswer: "2x", DistractorB: "x", DistractorC: "x²", DistractorD: "2"},
		{ID: 2, LevelID: 1, Statement: "f(x) = 3x", CorrectAnswer: "3", DistractorB: "3x", DistractorC: "x", DistractorD: "0"},
		{ID: 3, LevelID: 2, Statement: "f(x) = √x", CorrectAnswer: "1/(2√x)", DistractorB: "√x/2", DistractorC: "2√x", DistractorD: "1/√x"},
		{ID: 4, LevelID: 3, Statement: "f(x) = sin(x)", CorrectAnswer: "cos(x)", DistractorB: "-cos(x)", DistractorC: "-sin(x)", DistractorD: "tan(x)"},
		{ID: 5, LevelID: 4, Statement: "f(x) = sin(x²)", CorrectAnswer: "2x·cos(x²)", DistractorB: "cos(x²)", DistractorC: "2x·sin(x²)", DistractorD: "-2x·cos(x²)"},
	}
}

func TestShuffleKeepsAllOptions(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	q := sampleBank()[0]

	shuffled := Shuffle(rng, q)
	if len(shuffled.Options) != 4 {
		t.Fatalf("Expected 4 options, got %d", len(shuffled.Options))
	}
	if shuffled.CorrectAnswer != q.CorrectAnswer {
		t.Errorf("Expected correct answer %q to survive the shuffle, got %q", q.CorrectAnswer, shuffled.CorrectAnswer)
	}

	want := map[string]bool{q.CorrectAnswer: true, q.DistractorB: true, q.DistractorC: true, q.DistractorD: true}
	for _, opt := range shuffled.Options {
		if !want[opt] {
			t.Errorf("Shuffle produced unexpected option %q", opt)
		}
		delete(want, opt)
	}
	if len(want) != 0 {
		t.Errorf("Shuffle dropped options: %v", want)
	}
}

func TestShuffleReachesEveryPosition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	q := sampleBank()[0]

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		shuffled := Shuffle(rng, q)
		for pos, opt := range shuffled.Options {
			if opt == q.CorrectAnswer {
				seen[pos] = true
			}
		}
	}
	for pos := 0; pos < 4; pos++ {
		if !seen[pos] {
			t.Errorf("Correct answer never landed in position %d over 200 shuffles", pos)
		}
	}
}

func TestPoolDrawsWithoutRepeats(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool := NewPool(rng, sampleBank())

	if pool.Len() != 5 {
		t.Fatalf("Expected pool length 5, got %d", pool.Len())
	}

	drawn := map[int64]bool{}
	for i := 0; i < 5; i++ {
		q, ok := pool.DrawFor(1, 1)
		if !ok {
			t.Fatalf("Draw %d failed with %d questions left", i, pool.Len())
		}
		if drawn[q.ID] {
			t.Errorf("Question %d drawn twice", q.ID)
		}
		drawn[q.ID] = true
	}

	if _, ok := pool.DrawFor(1, 1); ok {
		t.Error("Expected draw from an empty pool to fail")
	}
	if pool.Len() != 0 {
		t.Errorf("Expected empty pool, got length %d", pool.Len())
	}
}

func TestDrawForTierFilters(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	// Tier 5 only accepts top-level questions.
	pool := NewPool(rng, sampleBank())
	q, ok := pool.DrawFor(5, 1)
	if !ok || q.LevelID != MaxLevel {
		t.Errorf("Expected a tier-5 draw to return a level-%d question, got level %d", MaxLevel, q.LevelID)
	}

	// Tier 3 at level 2 wants level 3 or above.
	pool = NewPool(rng, sampleBank())
	for i := 0; i < 2; i++ {
		q, ok = pool.DrawFor(3, 2)
		if !ok || q.LevelID < 3 {
			t.Errorf("Expected a tier-3 draw at level 2 to return level >= 3, got level %d", q.LevelID)
		}
	}

	// Tier 2 at level 2 wants the current level or above.
	pool = NewPool(rng, sampleBank())
	q, ok = pool.DrawFor(2, 2)
	if !ok || q.LevelID < 2 {
		t.Errorf("Expected a tier-2 draw at level 2 to return level >= 2, got level %d", q.LevelID)
	}
}

func TestDrawForFallsBackWhenFilterEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	onlyEasy := []Question{
		{ID: 10, LevelID: 1, Statement: "f(x) = x", CorrectAnswer: "1"},
		{ID: 11, LevelID: 1, Statement: "f(x) = 5", CorrectAnswer: "0"},
	}
	pool := NewPool(rng, onlyEasy)

	// No level-4 questions exist, so the tier-5 filter matches nothing
	// and the draw must fall back to the remaining pool.
	q, ok := pool.DrawFor(5, 4)
	if !ok {
		t.Fatal("Expected the fallback draw to succeed")
	}
	if q.LevelID != 1 {
		t.Errorf("Expected a fallback question from the pool, got level %d", q.LevelID)
	}
	if pool.Len() != 1 {
		t.Errorf("Expected the fallback draw to consume a question, pool length is %d", pool.Len())
	}
}
