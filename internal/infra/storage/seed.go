package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/derivaventura/server/internal/domain/enemy"
	"github.com/derivaventura/server/internal/domain/question"
)

// Seed fills empty tables with the built-in content so a fresh
// database is immediately playable: enemy templates, the starter
// question bank, and today's daily question.
func Seed(ctx context.Context, db *sql.DB) error {
	if err := seedEnemyTypes(ctx, db); err != nil {
		return err
	}
	if err := seedQuestions(ctx, db); err != nil {
		return err
	}
	return seedDailyQuestion(ctx, db)
}

func tableEmpty(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count == 0, nil
}

func seedEnemyTypes(ctx context.Context, db *sql.DB) error {
	empty, err := tableEmpty(ctx, db, "enemy_types")
	if err != nil || !empty {
		return err
	}
	repo := NewEnemyTypeRepository(db)
	for _, d := range enemy.DefaultDefs() {
		if err := repo.Insert(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func seedQuestions(ctx context.Context, db *sql.DB) error {
	empty, err := tableEmpty(ctx, db, "questions")
	if err != nil || !empty {
		return err
	}
	for _, q := range starterQuestions() {
		_, err := db.ExecContext(ctx,
			`INSERT INTO questions (level_id, statement, correct_answer, distractor_b, distractor_c, distractor_d)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			q.LevelID, q.Statement, q.CorrectAnswer, q.DistractorB, q.DistractorC, q.DistractorD,
		)
		if err != nil {
			return fmt.Errorf("failed to seed question %q: %w", q.Statement, err)
		}
	}
	return nil
}

// seedDailyQuestion schedules today's challenge if none exists,
// rotating through the daily bank by day of year.
func seedDailyQuestion(ctx context.Context, db *sql.DB) error {
	today := time.Now().Format("2006-01-02")
	repo := NewDailyQuestionRepository(db)
	if _, err := repo.ForDate(ctx, today); err == nil {
		return nil
	}

	bank := dailyBank()
	pick := bank[time.Now().YearDay()%len(bank)]
	pick.Date = today
	return repo.Insert(ctx, pick)
}

// starterQuestions is the built-in derivative bank, six per level.
func starterQuestions() []question.Question {
	return []question.Question{
		// Level 1: power rule basics
		{LevelID: 1, Statement: "f(x) = x²", CorrectAnswer: "2x", DistractorB: "x", DistractorC: "x²", DistractorD: "2"},
		{LevelID: 1, Statement: "f(x) = 3x", CorrectAnswer: "3", DistractorB: "3x", DistractorC: "x", DistractorD: "0"},
		{LevelID: 1, Statement: "f(x) = 7", CorrectAnswer: "0", DistractorB: "7", DistractorC: "1", DistractorD: "7x"},
		{LevelID: 1, Statement: "f(x) = x³", CorrectAnswer: "3x²", DistractorB: "x²", DistractorC: "3x", DistractorD: "x³"},
		{LevelID: 1, Statement: "f(x) = 2x²", CorrectAnswer: "4x", DistractorB: "2x", DistractorC: "4x²", DistractorD: "2"},
		{LevelID: 1, Statement: "f(x) = x", CorrectAnswer: "1", DistractorB: "x", DistractorC: "0", DistractorD: "2x"},

		// Level 2: polynomials, roots, reciprocals
		{LevelID: 2, Statement: "f(x) = x⁴ + x²", CorrectAnswer: "4x³ + 2x", DistractorB: "4x³ + x", DistractorC: "x³ + 2x", DistractorD: "4x⁴ + 2x²"},
		{LevelID: 2, Statement: "f(x) = √x", CorrectAnswer: "1/(2√x)", DistractorB: "√x/2", DistractorC: "2√x", DistractorD: "1/√x"},
		{LevelID: 2, Statement: "f(x) = 1/x", CorrectAnswer: "-1/x²", DistractorB: "1/x²", DistractorC: "-1/x", DistractorD: "ln(x)"},
		{LevelID: 2, Statement: "f(x) = 4x³ - 2x", CorrectAnswer: "12x² - 2", DistractorB: "12x² - 2x", DistractorC: "4x² - 2", DistractorD: "12x³ - 2"},
		{LevelID: 2, Statement: "f(x) = x⁵", CorrectAnswer: "5x⁴", DistractorB: "x⁴", DistractorC: "5x⁵", DistractorD: "4x⁵"},
		{LevelID: 2, Statement: "f(x) = x² + 3x + 1", CorrectAnswer: "2x + 3", DistractorB: "2x + 1", DistractorC: "x + 3", DistractorD: "2x² + 3"},

		// Level 3: trig, exponentials, logarithms
		{LevelID: 3, Statement: "f(x) = sin(x)", CorrectAnswer: "cos(x)", DistractorB: "-cos(x)", DistractorC: "-sin(x)", DistractorD: "tan(x)"},
		{LevelID: 3, Statement: "f(x) = cos(x)", CorrectAnswer: "-sin(x)", DistractorB: "sin(x)", DistractorC: "-cos(x)", DistractorD: "sec(x)"},
		{LevelID: 3, Statement: "f(x) = eˣ", CorrectAnswer: "eˣ", DistractorB: "xeˣ⁻¹", DistractorC: "eˣ⁻¹", DistractorD: "ln(x)"},
		{LevelID: 3, Statement: "f(x) = ln(x)", CorrectAnswer: "1/x", DistractorB: "ln(x)/x", DistractorC: "x", DistractorD: "eˣ"},
		{LevelID: 3, Statement: "f(x) = tan(x)", CorrectAnswer: "sec²(x)", DistractorB: "sec(x)tan(x)", DistractorC: "-csc²(x)", DistractorD: "cos²(x)"},
		{LevelID: 3, Statement: "f(x) = x·eˣ", CorrectAnswer: "eˣ(x + 1)", DistractorB: "eˣ", DistractorC: "x·eˣ", DistractorD: "eˣ(x - 1)"},

		// Level 4: chain, product, quotient rules
		{LevelID: 4, Statement: "f(x) = sin(x²)", CorrectAnswer: "2x·cos(x²)", DistractorB: "cos(x²)", DistractorC: "2x·sin(x²)", DistractorD: "-2x·cos(x²)"},
		{LevelID: 4, Statement: "f(x) = e²ˣ", CorrectAnswer: "2e²ˣ", DistractorB: "e²ˣ", DistractorC: "2xe²ˣ", DistractorD: "e²"},
		{LevelID: 4, Statement: "f(x) = ln(x² + 1)", CorrectAnswer: "2x/(x² + 1)", DistractorB: "1/(x² + 1)", DistractorC: "2x·ln(x² + 1)", DistractorD: "x/(x² + 1)"},
		{LevelID: 4, Statement: "f(x) = x²·sin(x)", CorrectAnswer: "2x·sin(x) + x²·cos(x)", DistractorB: "2x·cos(x)", DistractorC: "2x·sin(x)", DistractorD: "x²·cos(x)"},
		{LevelID: 4, Statement: "f(x) = sin(x)/x", CorrectAnswer: "(x·cos(x) - sin(x))/x²", DistractorB: "cos(x)/x", DistractorC: "(sin(x) - x·cos(x))/x²", DistractorD: "cos(x)"},
		{LevelID: 4, Statement: "f(x) = (2x + 1)³", CorrectAnswer: "6(2x + 1)²", DistractorB: "3(2x + 1)²", DistractorC: "2(2x + 1)³", DistractorD: "6(2x + 1)"},
	}
}

// dailyBank rotates through the daily challenge.
func dailyBank() []DailyQuestion {
	return []DailyQuestion{
		{Statement: "f(x) = x² + 2x", CorrectAnswer: "2x + 2", DistractorB: "2x", DistractorC: "x + 2", DistractorD: "2x² + 2"},
		{Statement: "f(x) = cos(2x)", CorrectAnswer: "-2sin(2x)", DistractorB: "2sin(2x)", DistractorC: "-sin(2x)", DistractorD: "-2cos(2x)"},
		{Statement: "f(x) = x·ln(x)", CorrectAnswer: "ln(x) + 1", DistractorB: "ln(x)", DistractorC: "1/x", DistractorD: "x·ln(x) + 1"},
		{Statement: "f(x) = √(x² + 1)", CorrectAnswer: "x/√(x² + 1)", DistractorB: "1/(2√(x² + 1))", DistractorC: "2x/√(x² + 1)", DistractorD: "√(x² + 1)/x"},
		{Statement: "f(x) = e⁻ˣ", CorrectAnswer: "-e⁻ˣ", DistractorB: "e⁻ˣ", DistractorC: "-xe⁻ˣ", DistractorD: "e⁻ˣ⁻¹"},
		{Statement: "f(x) = x³ - 3x", CorrectAnswer: "3x² - 3", DistractorB: "3x²", DistractorC: "x² - 3", DistractorD: "3x² - 3x"},
		{Statement: "f(x) = sin²(x)", CorrectAnswer: "2sin(x)cos(x)", DistractorB: "2sin(x)", DistractorC: "cos²(x)", DistractorD: "2cos(x)"},
	}
}
