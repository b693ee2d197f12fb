package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"exam-express/internal/domain"
	"exam-express/internal/repository/models"
)

const examResultSelect = `SELECT r.id AS ID, r.user_id AS USER_ID, u.username AS USERNAME,
	r.reading_score AS READING_SCORE, r.reading_total AS READING_TOTAL,
	r.listening_score AS LISTENING_SCORE, r.listening_total AS LISTENING_TOTAL,
	r.writing_score AS WRITING_SCORE, r.writing_total AS WRITING_TOTAL,
	r.total_score AS TOTAL_SCORE, r.total_questions AS TOTAL_QUESTIONS,
	r.answers_json AS ANSWERS_JSON, r.submitted_at AS SUBMITTED_AT
	FROM exam_results r JOIN users u ON u.id = r.user_id`

type sqlxExamResultRepository struct {
	db DBTX
}

// NewExamResultRepository creates a domain.ExamResultRepository backed by sqlx.
func NewExamResultRepository(db DBTX) domain.ExamResultRepository {
	return &sqlxExamResultRepository{db: db}
}

func (r *sqlxExamResultRepository) Create(ctx context.Context, result *domain.ExamResult) error {
	m, err := toExamResultModel(result)
	if err != nil {
		return err
	}
	query := `INSERT INTO exam_results (id, user_id, reading_score, reading_total, listening_score, listening_total,
	              writing_score, writing_total, total_score, total_questions, answers_json, submitted_at)
	          VALUES (:ID, :USER_ID, :READING_SCORE, :READING_TOTAL, :LISTENING_SCORE, :LISTENING_TOTAL,
	              :WRITING_SCORE, :WRITING_TOTAL, :TOTAL_SCORE, :TOTAL_QUESTIONS, :ANSWERS_JSON, :SUBMITTED_AT)`

	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, m); err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("a result is already stored for this user").WithContext("user_id", result.UserID)
		}
		return fmt.Errorf("failed to create exam result: %w", err)
	}
	return nil
}

func (r *sqlxExamResultRepository) GetByUserID(ctx context.Context, userID string) (*domain.ExamResult, error) {
	exec := GetExecutor(ctx, r.db)
	var m models.ExamResult
	if err := exec.GetContext(ctx, &m, exec.Rebind(examResultSelect+` WHERE r.user_id = ?`), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exam result: %w", err)
	}
	return toExamResultDomain(&m)
}

func (r *sqlxExamResultRepository) List(ctx context.Context) ([]*domain.ExamResult, error) {
	var rows []models.ExamResult
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, examResultSelect+` ORDER BY r.submitted_at, u.username`); err != nil {
		return nil, fmt.Errorf("failed to list exam results: %w", err)
	}
	results := make([]*domain.ExamResult, 0, len(rows))
	for i := range rows {
		res, err := toExamResultDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *sqlxExamResultRepository) DeleteByUserID(ctx context.Context, userID string) error {
	exec := GetExecutor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM exam_results WHERE user_id = ?`), userID); err != nil {
		return fmt.Errorf("failed to delete exam result: %w", err)
	}
	return nil
}

func toExamResultModel(r *domain.ExamResult) (*models.ExamResult, error) {
	m := &models.ExamResult{
		ID:             r.ID,
		UserID:         r.UserID,
		Username:       r.Username,
		ReadingScore:   r.Reading.Score,
		ReadingTotal:   r.Reading.Total,
		ListeningScore: r.Listening.Score,
		ListeningTotal: r.Listening.Total,
		WritingScore:   r.Writing.Score,
		WritingTotal:   r.Writing.Total,
		TotalScore:     r.TotalScore,
		TotalQuestions: r.TotalQuestions,
		SubmittedAt:    r.SubmittedAt,
	}
	if r.Answers != nil {
		payload, err := json.Marshal(r.Answers)
		if err != nil {
			return nil, fmt.Errorf("failed to encode answers: %w", err)
		}
		m.AnswersJSON = sql.NullString{String: string(payload), Valid: true}
	}
	return m, nil
}

func toExamResultDomain(m *models.ExamResult) (*domain.ExamResult, error) {
	r := &domain.ExamResult{
		ID:             m.ID,
		UserID:         m.UserID,
		Username:       m.Username,
		Reading:        domain.SectionScore{Score: m.ReadingScore, Total: m.ReadingTotal},
		Listening:      domain.SectionScore{Score: m.ListeningScore, Total: m.ListeningTotal},
		Writing:        domain.SectionScore{Score: m.WritingScore, Total: m.WritingTotal},
		TotalScore:     m.TotalScore,
		TotalQuestions: m.TotalQuestions,
		SubmittedAt:    m.SubmittedAt,
	}
	if m.AnswersJSON.Valid && m.AnswersJSON.String != "" {
		var answers domain.ExamAnswers
		if err := json.Unmarshal([]byte(m.AnswersJSON.String), &answers); err != nil {
			return nil, fmt.Errorf("stored answers of result %s are not valid JSON: %w", m.ID, err)
		}
		r.Answers = &answers
	}
	return r, nil
}
