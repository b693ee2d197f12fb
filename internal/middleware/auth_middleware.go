package middleware

import (
	"context"
	"strings"

	"exam-express/internal/domain"
	"exam-express/internal/dto"
	"exam-express/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TokenValidator is the part of the auth service the middleware depends on.
type TokenValidator interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "

	// fiber.Ctx locals set by Protected
	UserIDKey   = "userID"
	UsernameKey = "username"
	RoleKey     = "role"
)

func unauthorized(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Code:    code,
		Message: message,
		Status:  fiber.StatusUnauthorized,
	})
}

// Protected requires a valid bearer JWT and stores its claims in the request locals.
func Protected(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return unauthorized(c, "MISSING_AUTH_HEADER", "Authorization header is missing")
		}
		// the header value may arrive trimmed, so "Bearer " and "Bearer" are the same
		scheme, tokenString, _ := strings.Cut(strings.TrimSpace(authHeader), " ")
		if !strings.EqualFold(scheme, strings.TrimSpace(BearerSchema)) {
			return unauthorized(c, "INVALID_AUTH_SCHEME", "Authorization scheme is not Bearer")
		}
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			return unauthorized(c, "EMPTY_TOKEN", "Token is empty")
		}

		claims, err := validator.ValidateJWT(c.UserContext(), tokenString)
		if err != nil {
			logger.Get().Debug("Rejected bearer token", zap.String("path", c.Path()), zap.Error(err))
			return unauthorized(c, "INVALID_TOKEN", "Token is invalid or expired")
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(UsernameKey, claims.Username)
		c.Locals(RoleKey, domain.Role(claims.Role))
		return c.Next()
	}
}

// AdminOnly allows the request through only for administrator tokens. It must run after Protected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals(RoleKey).(domain.Role); role != domain.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Code:    string(domain.CodeForbidden),
				Message: "Administrator access required",
				Status:  fiber.StatusForbidden,
			})
		}
		return c.Next()
	}
}

// CandidateOnly rejects administrator tokens on routes that act on the caller's own exam.
func CandidateOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(RoleKey).(domain.Role)
		userID, _ := c.Locals(UserIDKey).(string)
		if role != domain.RoleCandidate || userID == "" {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Code:    string(domain.CodeForbidden),
				Message: "Only exam candidates can access this resource",
				Status:  fiber.StatusForbidden,
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id stored by Protected.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}
