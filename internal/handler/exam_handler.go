package handler

import (
	"exam-express/internal/dto"
	"exam-express/internal/middleware"
	"exam-express/internal/service"
	"exam-express/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type ExamHandler struct {
	examService service.ExamService
	validator   *validation.Validator
}

func NewExamHandler(examService service.ExamService, validator *validation.Validator) *ExamHandler {
	return &ExamHandler{examService: examService, validator: validator}
}

// GetLayout returns the question ids of the current exam.
// @Summary Exam layout
// @Description Lists the question ids per section in display order. No answers are included.
// @Tags exam
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} domain.ExamLayout
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /exam/layout [get]
func (h *ExamHandler) GetLayout(c *fiber.Ctx) error {
	layout, err := h.examService.Layout(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(layout)
}

// Submit grades and stores the caller's answers.
// @Summary Submit exam
// @Description Grades the submission against the current answer key. Each candidate can submit once.
// @Tags exam
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.SubmitExamRequest true "Answers per section"
// @Success 201 {object} dto.SubmitExamResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Invalid request"
// @Failure 409 {object} middleware.ErrorResponse "Already submitted"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /exam/submit [post]
func (h *ExamHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitExamRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}
	result, submittedAt, err := h.examService.Submit(c.UserContext(), middleware.UserID(c), req.ToDomain())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SubmitExamResponse{
		Result:      result,
		SubmittedAt: submittedAt,
	})
}

// GetMyResult returns the caller's graded submission.
// @Summary My result
// @Tags exam
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.ResultDetailResponse
// @Failure 404 {object} middleware.ErrorResponse "Not submitted yet"
// @Failure 409 {object} middleware.ErrorResponse "Result cannot be regraded"
// @Router /exam/result [get]
func (h *ExamHandler) GetMyResult(c *fiber.Ctx) error {
	detail, err := h.examService.MyResult(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.ResultDetailResponse{
		Username:    detail.Username,
		SubmittedAt: detail.SubmittedAt,
		Result:      detail.Result,
	})
}
