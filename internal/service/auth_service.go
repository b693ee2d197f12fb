package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"exam-express/internal/config"
	"exam-express/internal/domain"
	"exam-express/internal/dto"
	"exam-express/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTypeBearer = "Bearer"

var (
	ErrInvalidJWTToken = errors.New("invalid jwt token")
)

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*dto.LoginResponse, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type authServiceImpl struct {
	userRepo  domain.UserRepository
	appConfig *config.Config
	now       func() time.Time
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo domain.UserRepository, appConfig *config.Config) (AuthService, error) {
	if len(appConfig.JWT.SecretKey) < 32 {
		return nil, errors.New("jwt secret key must be at least 32 bytes long")
	}
	return &authServiceImpl{
		userRepo:  userRepo,
		appConfig: appConfig,
		now:       time.Now,
	}, nil
}

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	appLogger := logger.Get()
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewUnauthorizedError(domain.ErrInvalidCredentials.Error())
	}

	if username == s.appConfig.Admin.Username {
		if s.appConfig.Admin.PasswordHash == "" ||
			bcrypt.CompareHashAndPassword([]byte(s.appConfig.Admin.PasswordHash), []byte(password)) != nil {
			appLogger.Warn("Administrator login rejected", zap.String("username", username))
			return nil, domain.NewError(domain.CodeUnauthorized, domain.ErrInvalidCredentials.Error(), domain.ErrInvalidCredentials)
		}
		return s.issue("", username, domain.RoleAdmin, false)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		appLogger.Info("Login for unknown user", zap.String("username", username))
		return nil, domain.NewError(domain.CodeUnauthorized, domain.ErrInvalidCredentials.Error(), domain.ErrInvalidCredentials)
	}
	if user.HasPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			appLogger.Info("Login with wrong password", zap.String("username", username))
			return nil, domain.NewError(domain.CodeUnauthorized, domain.ErrInvalidCredentials.Error(), domain.ErrInvalidCredentials)
		}
	}

	appLogger.Info("User logged in", zap.String("userID", user.ID), zap.String("username", user.Username))
	return s.issue(user.ID, user.Username, domain.RoleCandidate, user.IsCompleted)
}

func (s *authServiceImpl) issue(userID, username string, role domain.Role, completed bool) (*dto.LoginResponse, error) {
	ttl := s.appConfig.JWT.AccessTokenTTL
	token, err := s.createJWT(userID, username, role, ttl)
	if err != nil {
		return nil, domain.NewInternalError("failed to create access token", err)
	}
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(ttl.Seconds()),
		Username:    username,
		Role:        string(role),
		IsCompleted: completed,
	}, nil
}

func (s *authServiceImpl) createJWT(userID, username string, role domain.Role, ttl time.Duration) (string, error) {
	now := s.now()
	subject := userID
	if subject == "" {
		subject = username
	}
	claims := dto.AuthClaims{
		UserID:   userID,
		Username: username,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   subject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.appConfig.JWT.SecretKey))
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.appConfig.JWT.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidJWTToken
	}
	switch domain.Role(claims.Role) {
	case domain.RoleAdmin, domain.RoleCandidate:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidJWTToken, claims.Role)
	}
	return claims, nil
}
