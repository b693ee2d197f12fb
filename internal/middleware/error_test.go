package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"exam-express/internal/domain"
	"exam-express/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.NewNotFoundError("missing"), http.StatusNotFound, "NOT_FOUND"},
		{"malformed key", domain.NewMalformedKeyError("bad"), http.StatusBadRequest, "MALFORMED_ANSWER_KEY"},
		{"unauthorized", domain.NewUnauthorizedError("no"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", domain.NewForbiddenError("no"), http.StatusForbidden, "FORBIDDEN"},
		{"already submitted", domain.NewAlreadySubmittedError("anna"), http.StatusConflict, "ALREADY_SUBMITTED"},
		{"legacy", domain.NewLegacyResultError("anna"), http.StatusConflict, "LEGACY_RESULT"},
		{"conflict", domain.NewConflictError("dup"), http.StatusConflict, "CONFLICT"},
		{"internal", domain.NewInternalError("boom", errors.New("db")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"fiber", fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"unknown", errors.New("kaboom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"validation", domain.ValidationErrors{domain.NewMissingFieldError("username")}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotContains(t, body["message"], "db")
		})
	}
}

func TestErrorHandler_DetailsFromContext(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/", func(c *fiber.Ctx) error { return domain.NewAlreadySubmittedError("anna") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)

	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "anna", body.Details["username"])
}

func TestRequestLogger_ReportsHandledStatus(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestLogger())
	app.Get("/", func(c *fiber.Ctx) error { return domain.NewNotFoundError("missing") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
