package dto

import (
	"time"

	"exam-express/internal/domain"
)

// SubmitExamRequest carries a candidate's answers. Missing ids count as unanswered.
// The number of answers per section is not limited here: the answer key may have any
// size, and the whole request is bounded by server.body_limit.
type SubmitExamRequest struct {
	Reading   map[string]string `json:"reading" validate:"dive,keys,max=64,endkeys,max=500"`
	Listening map[string]string `json:"listening" validate:"dive,keys,max=64,endkeys,max=500"`
	Writing   map[string]string `json:"writing" validate:"dive,keys,max=64,endkeys,max=20000"`
}

// ToDomain converts the request into the answers handed to the grading engine.
func (r SubmitExamRequest) ToDomain() domain.ExamAnswers {
	return domain.ExamAnswers{
		Reading:   r.Reading,
		Listening: r.Listening,
		Writing:   r.Writing,
	}
}

// SubmitExamResponse is returned once the submission has been graded and stored.
type SubmitExamResponse struct {
	Result      *domain.GradingResult `json:"result"`
	SubmittedAt time.Time             `json:"submitted_at"`
}

// AnswerKeyResponse wraps the current answer key for the administrator.
type AnswerKeyResponse struct {
	Key           domain.AnswerKey `json:"key"`
	QuestionCount int              `json:"question_count"`
}

// UploadPDFResponse is returned after the exam PDF was stored.
type UploadPDFResponse struct {
	PDFURL string `json:"pdf_url"`
}
