package service

import (
	"context"
	"fmt"
	"strings"

	"exam-express/internal/domain"
	"exam-express/internal/dto"
	"exam-express/internal/logger"
	"exam-express/internal/util"

	"go.uber.org/zap"
)

// UserService defines the interface for candidate account administration.
type UserService interface {
	ListUsers(ctx context.Context) (*dto.UserListResponse, error)
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, username string) error
	ResetUserExam(ctx context.Context, username string) error
}

type userServiceImpl struct {
	userRepo   domain.UserRepository
	resultRepo domain.ExamResultRepository
	txManager  domain.TransactionManager
	// adminUsername always logs in as the administrator, so no candidate may take it
	adminUsername string
}

// NewUserService creates a new instance of UserService.
func NewUserService(
	userRepo domain.UserRepository,
	resultRepo domain.ExamResultRepository,
	txManager domain.TransactionManager,
	adminUsername string,
) UserService {
	return &userServiceImpl{
		userRepo:      userRepo,
		resultRepo:    resultRepo,
		txManager:     txManager,
		adminUsername: strings.TrimSpace(adminUsername),
	}
}

func toUserResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		IsCompleted: u.IsCompleted,
		HasPassword: u.HasPassword(),
		CreatedAt:   u.CreatedAt,
	}
}

func (s *userServiceImpl) ListUsers(ctx context.Context) (*dto.UserListResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to list users", err)
	}
	resp := &dto.UserListResponse{Users: make([]dto.UserResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	return resp, nil
}

func (s *userServiceImpl) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	var hash string
	if req.Password != "" {
		var err error
		if hash, err = HashPassword(req.Password); err != nil {
			return nil, domain.NewInternalError("failed to hash password", err)
		}
	}

	user := domain.NewUser(util.NewULID(), req.Username, hash)
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if user.Username == s.adminUsername {
		return nil, domain.NewConflictError(fmt.Sprintf("username %q is reserved for the administrator", user.Username))
	}

	existing, err := s.userRepo.GetByUsername(ctx, user.Username)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up user", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError(fmt.Sprintf("user %q already exists", user.Username)).
			WithContext("username", user.Username)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Get().Info("User created", zap.String("userID", user.ID), zap.String("username", user.Username))

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) findUser(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("user %q not found", username))
	}
	return user, nil
}

// DeleteUser removes the account and its stored result.
func (s *userServiceImpl) DeleteUser(ctx context.Context, username string) error {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.resultRepo.DeleteByUserID(txCtx, user.ID); err != nil {
			return err
		}
		return s.userRepo.Delete(txCtx, user.ID)
	})
	if err != nil {
		return err
	}
	logger.Get().Info("User deleted", zap.String("userID", user.ID), zap.String("username", user.Username))
	return nil
}

// ResetUserExam discards the stored result so the user can take the exam again.
func (s *userServiceImpl) ResetUserExam(ctx context.Context, username string) error {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.resultRepo.DeleteByUserID(txCtx, user.ID); err != nil {
			return err
		}
		return s.userRepo.SetCompleted(txCtx, user.ID, false)
	})
	if err != nil {
		return err
	}
	logger.Get().Info("User exam reset", zap.String("userID", user.ID), zap.String("username", user.Username))
	return nil
}
