package dto

import (
	"time"

	"exam-express/internal/domain"
)

// ResultSummaryResponse is one row of the administrator's result list.
type ResultSummaryResponse struct {
	Username       string              `json:"username"`
	Reading        domain.SectionScore `json:"reading"`
	Listening      domain.SectionScore `json:"listening"`
	Writing        domain.SectionScore `json:"writing"`
	TotalScore     int                 `json:"total_score"`
	TotalQuestions int                 `json:"total_questions"`
	Percentage     int                 `json:"percentage"`
	SubmittedAt    time.Time           `json:"submitted_at"`
	Legacy         bool                `json:"legacy"`
}

// ResultListResponse represents the administrator's result list
type ResultListResponse struct {
	Results []ResultSummaryResponse `json:"results"`
}

// ResultDetailResponse is the full per-question report of one submission.
type ResultDetailResponse struct {
	Username    string                `json:"username"`
	SubmittedAt time.Time             `json:"submitted_at"`
	Result      *domain.GradingResult `json:"result"`
}

// NewResultSummaryResponse converts a domain summary
func NewResultSummaryResponse(s domain.ResultSummary) ResultSummaryResponse {
	return ResultSummaryResponse{
		Username:       s.Username,
		Reading:        s.Reading,
		Listening:      s.Listening,
		Writing:        s.Writing,
		TotalScore:     s.TotalScore,
		TotalQuestions: s.TotalQuestions,
		Percentage:     s.Percentage,
		SubmittedAt:    s.SubmittedAt,
		Legacy:         s.Legacy,
	}
}
