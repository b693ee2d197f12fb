package handler

import (
	"exam-express/internal/domain"
	"exam-express/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// bindJSON parses the request body into req and validates it by its struct tags.
func bindJSON(c *fiber.Ctx, v *validation.Validator, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return domain.NewInvalidInputError("request body is not valid JSON")
	}
	return v.Struct(req)
}
