package handler

import (
	"exam-express/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles every HTTP handler the API exposes.
type Handlers struct {
	Auth  *AuthHandler
	Exam  *ExamHandler
	Admin *AdminHandler
}

// RegisterRoutes mounts the API below /api.
func RegisterRoutes(app *fiber.App, h Handlers, tokens middleware.TokenValidator) {
	api := app.Group("/api")

	// Auth routes
	api.Post("/auth/login", h.Auth.Login)

	// Candidate routes
	exam := api.Group("/exam", middleware.Protected(tokens), middleware.CandidateOnly())
	exam.Get("/layout", h.Exam.GetLayout)
	exam.Post("/submit", h.Exam.Submit)
	exam.Get("/result", h.Exam.GetMyResult)

	// Admin routes
	admin := api.Group("/admin", middleware.Protected(tokens), middleware.AdminOnly())
	admin.Get("/users", h.Admin.ListUsers)
	admin.Post("/users", h.Admin.CreateUser)
	admin.Delete("/users/:username", h.Admin.DeleteUser)
	admin.Delete("/users/:username/result", h.Admin.ResetUserExam)
	admin.Get("/answer-key", h.Admin.GetAnswerKey)
	admin.Put("/answer-key", h.Admin.PutAnswerKey)
	admin.Post("/exam-pdf", h.Admin.UploadExamPDF)
	admin.Get("/results", h.Admin.ListResults)
	admin.Get("/results/:username", h.Admin.GetResult)
	admin.Get("/export/results", h.Admin.ExportResults)
}
