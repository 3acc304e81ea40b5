package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/derivaventura/server/internal/domain/question"
)

// QuestionRepository serves the per-level question bank.
type QuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// QuestionsForLevel loads every question of one level.
func (r *QuestionRepository) QuestionsForLevel(ctx context.Context, levelID int) ([]question.Question, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, level_id, statement, correct_answer, distractor_b, distractor_c, distractor_d
		 FROM questions WHERE level_id = ?`, levelID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var qs []question.Question
	for rows.Next() {
		var q question.Question
		if err := rows.Scan(&q.ID, &q.LevelID, &q.Statement, &q.CorrectAnswer,
			&q.DistractorB, &q.DistractorC, &q.DistractorD); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		qs = append(qs, q)
	}
	return qs, rows.Err()
}

// DailyQuestion is the once-a-day bonus-life exercise.
type DailyQuestion struct {
	ID            int64
	Date          string // YYYY-MM-DD
	Statement     string
	CorrectAnswer string
	DistractorB   string
	DistractorC   string
	DistractorD   string
}

// DailyQuestionRepository serves the daily challenge.
type DailyQuestionRepository struct {
	db *sql.DB
}

func NewDailyQuestionRepository(db *sql.DB) *DailyQuestionRepository {
	return &DailyQuestionRepository{db: db}
}

// ForDate fetches the question scheduled for the given YYYY-MM-DD date.
func (r *DailyQuestionRepository) ForDate(ctx context.Context, date string) (*DailyQuestion, error) {
	var q DailyQuestion
	err := r.db.QueryRowContext(ctx,
		`SELECT id, question_date, statement, correct_answer, distractor_b, distractor_c, distractor_d
		 FROM daily_questions WHERE question_date = ?`, date,
	).Scan(&q.ID, &q.Date, &q.Statement, &q.CorrectAnswer, &q.DistractorB, &q.DistractorC, &q.DistractorD)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query daily question: %w", err)
	}
	return &q, nil
}

// Get fetches a daily question by id, for answer validation.
func (r *DailyQuestionRepository) Get(ctx context.Context, id int64) (*DailyQuestion, error) {
	var q DailyQuestion
	err := r.db.QueryRowContext(ctx,
		`SELECT id, question_date, statement, correct_answer, distractor_b, distractor_c, distractor_d
		 FROM daily_questions WHERE id = ?`, id,
	).Scan(&q.ID, &q.Date, &q.Statement, &q.CorrectAnswer, &q.DistractorB, &q.DistractorC, &q.DistractorD)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query daily question: %w", err)
	}
	return &q, nil
}

// Insert schedules a daily question.
func (r *DailyQuestionRepository) Insert(ctx context.Context, q DailyQuestion) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO daily_questions (question_date, statement, correct_answer, distractor_b, distractor_c, distractor_d)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.Date, q.Statement, q.CorrectAnswer, q.DistractorB, q.DistractorC, q.DistractorD,
	)
	if err != nil {
		return fmt.Errorf("failed to insert daily question: %w", err)
	}
	return nil
}
