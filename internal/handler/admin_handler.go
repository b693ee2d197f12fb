package handler

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"exam-express/internal/domain"
	"exam-express/internal/dto"
	"exam-express/internal/logger"
	"exam-express/internal/service"
	"exam-express/internal/storage"
	"exam-express/internal/util"
	"exam-express/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	pdfFormField = "file"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var pdfMagic = []byte("%PDF-")

type AdminHandler struct {
	userService      service.UserService
	answerKeyService service.AnswerKeyService
	resultService    service.ResultService
	blobs            storage.BlobStore
	validator        *validation.Validator
}

func NewAdminHandler(
	userService service.UserService,
	answerKeyService service.AnswerKeyService,
	resultService service.ResultService,
	blobs storage.BlobStore,
	validator *validation.Validator,
) *AdminHandler {
	return &AdminHandler{
		userService:      userService,
		answerKeyService: answerKeyService,
		resultService:    resultService,
		blobs:            blobs,
		validator:        validator,
	}
}

// ListUsers lists every candidate account.
// @Summary List users
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UserListResponse
// @Failure 403 {object} middleware.ErrorResponse "Forbidden"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// CreateUser provisions a candidate account.
// @Summary Create user
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "New account"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Invalid request"
// @Failure 409 {object} middleware.ErrorResponse "Username taken"
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}
	user, err := h.userService.CreateUser(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// DeleteUser removes a candidate and their result.
// @Summary Delete user
// @Tags admin
// @Security ApiKeyAuth
// @Param username path string true "Username"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /admin/users/{username} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.userService.DeleteUser(c.UserContext(), c.Params("username")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ResetUserExam discards a candidate's result so they can retake the exam.
// @Summary Reset exam
// @Tags admin
// @Security ApiKeyAuth
// @Param username path string true "Username"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /admin/users/{username}/result [delete]
func (h *AdminHandler) ResetUserExam(c *fiber.Ctx) error {
	if err := h.userService.ResetUserExam(c.UserContext(), c.Params("username")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetAnswerKey returns the current answer key.
// @Summary Current answer key
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.AnswerKeyResponse
// @Router /admin/answer-key [get]
func (h *AdminHandler) GetAnswerKey(c *fiber.Ctx) error {
	key, err := h.answerKeyService.GetCurrent(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.AnswerKeyResponse{Key: key, QuestionCount: key.QuestionCount()})
}

// PutAnswerKey replaces the answer key.
// @Summary Replace answer key
// @Description The body is the answer key document. A minWordCount field in writing selects word-count grading; it takes a whole number written as 20, 20.0 or "20". A document without pdfUrl keeps the current PDF.
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body object true "Answer key document"
// @Success 200 {object} dto.AnswerKeyResponse
// @Failure 400 {object} middleware.ErrorResponse "Malformed answer key"
// @Router /admin/answer-key [put]
func (h *AdminHandler) PutAnswerKey(c *fiber.Ctx) error {
	key, err := h.answerKeyService.Save(c.UserContext(), c.Body())
	if err != nil {
		return err
	}
	return c.JSON(dto.AnswerKeyResponse{Key: key, QuestionCount: key.QuestionCount()})
}

// UploadExamPDF stores the exam PDF and links it from the answer key.
// @Summary Upload exam PDF
// @Tags admin
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Exam PDF"
// @Success 201 {object} dto.UploadPDFResponse
// @Failure 400 {object} middleware.ErrorResponse "Not a PDF"
// @Router /admin/exam-pdf [post]
func (h *AdminHandler) UploadExamPDF(c *fiber.Ctx) error {
	appLogger := logger.Get()

	header, err := c.FormFile(pdfFormField)
	if err != nil {
		return domain.NewInvalidInputError(fmt.Sprintf("multipart field %q is required", pdfFormField))
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return domain.NewInvalidInputError("only PDF files can be uploaded")
	}

	file, err := header.Open()
	if err != nil {
		return domain.NewInternalError("failed to read upload", err)
	}
	defer file.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(file, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return domain.NewInvalidInputError("uploaded file is not a PDF document")
	}

	key := fmt.Sprintf("exam/%s.pdf", util.NewULID())
	url, err := h.blobs.Put(c.UserContext(), key, io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		appLogger.Error("Failed to store exam PDF", zap.String("key", key), zap.Error(err))
		return domain.NewInternalError("failed to store exam PDF", err)
	}
	if _, err := h.answerKeyService.SetPDFURL(c.UserContext(), url); err != nil {
		return err
	}

	appLogger.Info("Exam PDF uploaded", zap.String("url", url), zap.Int64("size", header.Size))
	return c.Status(fiber.StatusCreated).JSON(dto.UploadPDFResponse{PDFURL: url})
}

// ListResults regrades and lists every stored result.
// @Summary List results
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.ResultListResponse
// @Router /admin/results [get]
func (h *AdminHandler) ListResults(c *fiber.Ctx) error {
	summaries, err := h.resultService.ListResults(c.UserContext())
	if err != nil {
		return err
	}
	resp := dto.ResultListResponse{Results: make([]dto.ResultSummaryResponse, 0, len(summaries))}
	for _, s := range summaries {
		resp.Results = append(resp.Results, dto.NewResultSummaryResponse(s))
	}
	return c.JSON(resp)
}

// GetResult returns one candidate's per-question report.
// @Summary Result detail
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} dto.ResultDetailResponse
// @Failure 404 {object} middleware.ErrorResponse "No result"
// @Failure 409 {object} middleware.ErrorResponse "Result cannot be regraded"
// @Router /admin/results/{username} [get]
func (h *AdminHandler) GetResult(c *fiber.Ctx) error {
	detail, err := h.resultService.GetResult(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ResultDetailResponse{
		Username:    detail.Username,
		SubmittedAt: detail.SubmittedAt,
		Result:      detail.Result,
	})
}

// ExportResults downloads the result list as an xlsx workbook.
// @Summary Export results
// @Tags admin
// @Security ApiKeyAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /admin/export/results [get]
func (h *AdminHandler) ExportResults(c *fiber.Ctx) error {
	data, err := h.resultService.Export(c.UserContext())
	if err != nil {
		return err
	}
	c.Attachment(fmt.Sprintf("exam-results-%s.xlsx", time.Now().UTC().Format("20060102")))
	c.Set(fiber.HeaderContentType, xlsxMIME)
	return c.Send(data)
}
