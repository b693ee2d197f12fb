package service

import (
	"context"
	"fmt"
	"time"

	"exam-express/internal/domain"
	"exam-express/internal/logger"
	"exam-express/internal/util"

	"go.uber.org/zap"
)

// ExamService handles the candidate side of the exam.
type ExamService interface {
	Layout(ctx context.Context) (domain.ExamLayout, error)
	// Submit grades the answers and stores the result. The result is returned only
	// after it was persisted.
	Submit(ctx context.Context, userID string, answers domain.ExamAnswers) (*domain.GradingResult, time.Time, error)
	// MyResult regrades the caller's stored submission against the current key.
	MyResult(ctx context.Context, userID string) (*domain.ResultDetail, error)
}

type examServiceImpl struct {
	keys       AnswerKeyService
	userRepo   domain.UserRepository
	resultRepo domain.ExamResultRepository
	txManager  domain.TransactionManager
	now        func() time.Time
}

// NewExamService creates a new instance of ExamService.
func NewExamService(
	keys AnswerKeyService,
	userRepo domain.UserRepository,
	resultRepo domain.ExamResultRepository,
	txManager domain.TransactionManager,
) ExamService {
	return &examServiceImpl{
		keys:       keys,
		userRepo:   userRepo,
		resultRepo: resultRepo,
		txManager:  txManager,
		now:        time.Now,
	}
}

func (s *examServiceImpl) Layout(ctx context.Context) (domain.ExamLayout, error) {
	return s.keys.Layout(ctx)
}

func (s *examServiceImpl) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("user %s not found", userID))
	}
	return user, nil
}

func (s *examServiceImpl) Submit(ctx context.Context, userID string, answers domain.ExamAnswers) (*domain.GradingResult, time.Time, error) {
	appLogger := logger.Get()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, time.Time{}, err
	}
	if user.IsCompleted {
		return nil, time.Time{}, domain.NewAlreadySubmittedError(user.Username)
	}
	existing, err := s.resultRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, time.Time{}, domain.NewInternalError("failed to check for an earlier submission", err)
	}
	if existing != nil {
		return nil, time.Time{}, domain.NewAlreadySubmittedError(user.Username)
	}

	key, err := s.keys.GetCurrent(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	graded, err := domain.GradeExam(answers, key)
	if err != nil {
		appLogger.Error("Current answer key cannot grade submissions", zap.Error(err))
		return nil, time.Time{}, err
	}

	submittedAt := s.now().UTC()
	result := domain.NewExamResult(util.NewULID(), user.ID, answers, graded, submittedAt)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.resultRepo.Create(txCtx, result); err != nil {
			return err
		}
		return s.userRepo.SetCompleted(txCtx, user.ID, true)
	})
	if err != nil {
		if domain.IsErrorCode(err, domain.CodeConflict) {
			return nil, time.Time{}, domain.NewAlreadySubmittedError(user.Username)
		}
		appLogger.Error("Failed to store exam result", zap.String("userID", user.ID), zap.Error(err))
		return nil, time.Time{}, domain.NewInternalError("failed to store exam result", err)
	}

	appLogger.Info("Exam submitted",
		zap.String("userID", user.ID),
		zap.String("username", user.Username),
		zap.Int("score", graded.TotalScore),
		zap.Int("total", graded.TotalQuestions))
	return graded, submittedAt, nil
}

func (s *examServiceImpl) MyResult(ctx context.Context, userID string) (*domain.ResultDetail, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stored, err := s.resultRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load exam result", err)
	}
	if stored == nil {
		return nil, domain.NewNotFoundError("no exam result has been submitted yet")
	}
	if stored.Username == "" {
		stored.Username = user.Username
	}

	key, err := s.keys.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	return regrade(stored, key)
}

// regrade rebuilds the per-question report of a stored result.
func regrade(stored *domain.ExamResult, key domain.AnswerKey) (*domain.ResultDetail, error) {
	if !stored.HasAnswers() {
		return nil, domain.NewLegacyResultError(stored.Username)
	}
	graded, err := domain.GradeExam(*stored.Answers, key)
	if err != nil {
		return nil, err
	}
	return &domain.ResultDetail{
		Username:    stored.Username,
		SubmittedAt: stored.SubmittedAt,
		Result:      graded,
	}, nil
}
