package models

import (
	"database/sql"
	"time"
)

// AnswerKey is one stored version of the answer key document.
type AnswerKey struct {
	ID        string    `db:"ID"`
	Version   int       `db:"VERSION"`
	KeyJSON   string    `db:"KEY_JSON"`
	CreatedAt time.Time `db:"CREATED_AT"`
}

// ExamResult is a row of exam_results. Username is filled by joins with users.
type ExamResult struct {
	ID             string         `db:"ID"`
	UserID         string         `db:"USER_ID"`
	Username       string         `db:"USERNAME"`
	ReadingScore   int            `db:"READING_SCORE"`
	ReadingTotal   int            `db:"READING_TOTAL"`
	ListeningScore int            `db:"LISTENING_SCORE"`
	ListeningTotal int            `db:"LISTENING_TOTAL"`
	WritingScore   int            `db:"WRITING_SCORE"`
	WritingTotal   int            `db:"WRITING_TOTAL"`
	TotalScore     int            `db:"TOTAL_SCORE"`
	TotalQuestions int            `db:"TOTAL_QUESTIONS"`
	AnswersJSON    sql.NullString `db:"ANSWERS_JSON"` // NULL for results stored before answers were kept
	SubmittedAt    time.Time      `db:"SUBMITTED_AT"`
}
