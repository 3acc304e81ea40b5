package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/derivaventura/server/internal/domain/enemy"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPlayerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository(openTestDB(t))

	id, err := repo.Create(ctx, "newton", "isaac@example.com", "hash1")
	if err != nil {
		t.Fatalf("Failed to create player: %v", err)
	}
	if id == 0 {
		t.Error("Expected a nonzero player id")
	}

	if _, err := repo.Create(ctx, "newton", "other@example.com", "hash2"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for a reused username, got %v", err)
	}
	if _, err := repo.Create(ctx, "leibniz", "isaac@example.com", "hash2"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for a reused email, got %v", err)
	}

	p, err := repo.GetByUsername(ctx, "newton")
	if err != nil {
		t.Fatalf("Failed to fetch player: %v", err)
	}
	if p.ID != id || p.Email != "isaac@example.com" || p.PasswordHash != "hash1" {
		t.Errorf("Fetched player mismatched: %+v", p)
	}
	if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for an unknown username, got %v", err)
	}
}

func TestBonusLives(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository(openTestDB(t))
	id, err := repo.Create(ctx, "euler", "euler@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to create player: %v", err)
	}

	lives, err := repo.BonusLives(ctx, id)
	if err != nil || lives != 0 {
		t.Fatalf("Expected a fresh player to have 0 bonus lives, got %d (%v)", lives, err)
	}

	if err := repo.AddBonusLife(ctx, id); err != nil {
		t.Fatalf("Failed to add bonus life: %v", err)
	}
	if lives, _ = repo.BonusLives(ctx, id); lives != 1 {
		t.Errorf("Expected 1 bonus life, got %d", lives)
	}

	if err := repo.ConsumeBonusLife(ctx, id); err != nil {
		t.Fatalf("Failed to consume bonus life: %v", err)
	}
	if lives, _ = repo.BonusLives(ctx, id); lives != 0 {
		t.Errorf("Expected 0 bonus lives after consuming, got %d", lives)
	}

	// Consuming at zero must not go negative.
	if err := repo.ConsumeBonusLife(ctx, id); err != nil {
		t.Fatalf("Consume at zero returned error: %v", err)
	}
	if lives, _ = repo.BonusLives(ctx, id); lives != 0 {
		t.Errorf("Expected bonus lives to stay at 0, got %d", lives)
	}

	if err := repo.AddBonusLife(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for an unknown player, got %v", err)
	}
}

func TestMatchRankingOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	players := NewPlayerRepository(db)
	matches := NewMatchRepository(db)

	ada, _ := players.Create(ctx, "ada", "ada@example.com", "h")
	alan, _ := players.Create(ctx, "alan", "alan@example.com", "h")

	for _, m := range []struct {
		player int64
		score  int
	}{{ada, 120}, {alan, 300}, {ada, 50}} {
		if err := matches.RecordMatch(ctx, m.player, 1, m.score); err != nil {
			t.Fatalf("Failed to record match: %v", err)
		}
	}

	entries, err := matches.TopScores(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to load ranking: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 ranking entries, got %d", len(entries))
	}
	if entries[0].Username != "alan" || entries[0].FinalScore != 300 {
		t.Errorf("Expected alan's 300 on top, got %+v", entries[0])
	}
	if entries[1].Username != "ada" || entries[1].FinalScore != 120 {
		t.Errorf("Expected ada's 120 second, got %+v", entries[1])
	}
}

func TestSeedPopulatesEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	defs, err := NewEnemyTypeRepository(db).All(ctx)
	if err != nil {
		t.Fatalf("Failed to load enemy types: %v", err)
	}
	if len(defs) != len(enemy.DefaultDefs()) {
		t.Errorf("Expected %d seeded enemy types, got %d", len(enemy.DefaultDefs()), len(defs))
	}

	questions := NewQuestionRepository(db)
	for levelID := 1; levelID <= 4; levelID++ {
		qs, err := questions.QuestionsForLevel(ctx, levelID)
		if err != nil {
			t.Fatalf("Failed to load level %d questions: %v", levelID, err)
		}
		if len(qs) == 0 {
			t.Errorf("Expected seeded questions for level %d", levelID)
		}
	}

	today := time.Now().Format("2006-01-02")
	if _, err := NewDailyQuestionRepository(db).ForDate(ctx, today); err != nil {
		t.Errorf("Expected a daily question scheduled for today, got %v", err)
	}

	// Seeding again must not duplicate anything.
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Second seed failed: %v", err)
	}
	qs, _ := questions.QuestionsForLevel(ctx, 1)
	if len(qs) != 6 {
		t.Errorf("Expected seeding to be idempotent with 6 level-1 questions, got %d", len(qs))
	}
}

func TestDailyQuestionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewDailyQuestionRepository(openTestDB(t))

	dq := DailyQuestion{
		Date:          "2026-08-29",
		Statement:     "f(x) = x²",
		CorrectAnswer: "2x",
		DistractorB:   "x",
		DistractorC:   "x²",
		DistractorD:   "2",
	}
	if err := repo.Insert(ctx, dq); err != nil {
		t.Fatalf("Failed to insert daily question: %v", err)
	}

	got, err := repo.ForDate(ctx, "2026-08-29")
	if err != nil {
		t.Fatalf("Failed to fetch daily question: %v", err)
	}
	if got.Statement != dq.Statement || got.CorrectAnswer != dq.CorrectAnswer {
		t.Errorf("Daily question round trip mismatched: %+v", got)
	}

	byID, err := repo.Get(ctx, got.ID)
	if err != nil || byID.Date != "2026-08-29" {
		t.Errorf("Fetch by id mismatched: %+v (%v)", byID, err)
	}

	if _, err := repo.ForDate(ctx, "1999-01-01"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for an unscheduled date, got %v", err)
	}
}

func TestEnemyTypeRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewEnemyTypeRepository(openTestDB(t))

	for _, d := range enemy.DefaultDefs() {
		if err := repo.Insert(ctx, d); err != nil {
			t.Fatalf("Failed to insert enemy type %q: %v", d.Name, err)
		}
	}

	defs, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("Failed to load enemy types: %v", err)
	}
	if len(defs) != 5 {
		t.Fatalf("Expected 5 enemy types, got %d", len(defs))
	}
	for i := 1; i < len(defs); i++ {
		if defs[i-1].DifficultyTier > defs[i].DifficultyTier {
			t.Errorf("Expected tier ordering, got %d before %d", defs[i-1].DifficultyTier, defs[i].DifficultyTier)
		}
	}
}
