package domain

import "time"

// SectionScore is the numeric summary persisted per section.
type SectionScore struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// ExamResult is the durable record of a submission. Answers is nil for rows stored
// before raw answers were captured; such rows cannot be regraded.
type ExamResult struct {
	ID             string
	UserID         string
	Username       string
	Reading        SectionScore
	Listening      SectionScore
	Writing        SectionScore
	TotalScore     int
	TotalQuestions int
	Answers        *ExamAnswers
	SubmittedAt    time.Time
}

// NewExamResult builds the record persisted for a graded submission.
func NewExamResult(id, userID string, answers ExamAnswers, graded *GradingResult, submittedAt time.Time) *ExamResult {
	return &ExamResult{
		ID:             id,
		UserID:         userID,
		Reading:        SectionScore{Score: graded.Reading.Score, Total: graded.Reading.Total},
		Listening:      SectionScore{Score: graded.Listening.Score, Total: graded.Listening.Total},
		Writing:        SectionScore{Score: graded.Writing.Score, Total: graded.Writing.Total},
		TotalScore:     graded.TotalScore,
		TotalQuestions: graded.TotalQuestions,
		Answers:        &answers,
		SubmittedAt:    submittedAt,
	}
}

// Percentage of the stored totals.
func (r *ExamResult) Percentage() int {
	return Percentage(r.TotalScore, r.TotalQuestions)
}

// HasAnswers reports whether the row can be regraded against a key.
func (r *ExamResult) HasAnswers() bool {
	return r.Answers != nil
}

// ResultSummary is one line of the administrator's result overview.
type ResultSummary struct {
	Username       string
	Reading        SectionScore
	Listening      SectionScore
	Writing        SectionScore
	TotalScore     int
	TotalQuestions int
	Percentage     int
	SubmittedAt    time.Time
	// Legacy is set when the numbers come from the stored row rather than a regrade.
	Legacy bool
}

// SummaryFromGrading summarizes a fresh regrade of a stored result.
func SummaryFromGrading(r *ExamResult, graded *GradingResult) ResultSummary {
	return ResultSummary{
		Username:       r.Username,
		Reading:        SectionScore{Score: graded.Reading.Score, Total: graded.Reading.Total},
		Listening:      SectionScore{Score: graded.Listening.Score, Total: graded.Listening.Total},
		Writing:        SectionScore{Score: graded.Writing.Score, Total: graded.Writing.Total},
		TotalScore:     graded.TotalScore,
		TotalQuestions: graded.TotalQuestions,
		Percentage:     graded.Percentage,
		SubmittedAt:    r.SubmittedAt,
	}
}

// SummaryFromStored summarizes a result using its persisted numbers only.
func SummaryFromStored(r *ExamResult) ResultSummary {
	return ResultSummary{
		Username:       r.Username,
		Reading:        r.Reading,
		Listening:      r.Listening,
		Writing:        r.Writing,
		TotalScore:     r.TotalScore,
		TotalQuestions: r.TotalQuestions,
		Percentage:     r.Percentage(),
		SubmittedAt:    r.SubmittedAt,
		Legacy:         true,
	}
}

// ResultDetail is a stored submission regraded into its per-question report.
type ResultDetail struct {
	Username    string
	SubmittedAt time.Time
	Result      *GradingResult
}
