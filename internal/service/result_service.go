package service

import (
	"context"
	"fmt"
	"time"

	"exam-express/internal/domain"
	"exam-express/internal/logger"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const resultsSheetName = "Results"

// ResultService is the administrator's view of stored submissions.
type ResultService interface {
	// ListResults regrades every stored result against one snapshot of the current key.
	ListResults(ctx context.Context) ([]domain.ResultSummary, error)
	GetResult(ctx context.Context, username string) (*domain.ResultDetail, error)
	// Export renders the result list as an xlsx workbook.
	Export(ctx context.Context) ([]byte, error)
}

type resultServiceImpl struct {
	keys        AnswerKeyService
	userRepo    domain.UserRepository
	resultRepo  domain.ExamResultRepository
	concurrency int
}

// NewResultService creates a new instance of ResultService.
func NewResultService(
	keys AnswerKeyService,
	userRepo domain.UserRepository,
	resultRepo domain.ExamResultRepository,
	concurrency int,
) ResultService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &resultServiceImpl{
		keys:        keys,
		userRepo:    userRepo,
		resultRepo:  resultRepo,
		concurrency: concurrency,
	}
}

func (s *resultServiceImpl) ListResults(ctx context.Context) ([]domain.ResultSummary, error) {
	stored, err := s.resultRepo.List(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to list exam results", err)
	}
	if len(stored) == 0 {
		return []domain.ResultSummary{}, nil
	}

	key, err := s.keys.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ResultSummary, len(stored))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, r := range stored {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !r.HasAnswers() {
				summaries[i] = domain.SummaryFromStored(r)
				return nil
			}
			graded, err := domain.GradeExam(*r.Answers, key)
			if err != nil {
				return err
			}
			summaries[i] = domain.SummaryFromGrading(r, graded)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Get().Error("Failed to regrade exam results", zap.Error(err))
		return nil, err
	}
	return summaries, nil
}

func (s *resultServiceImpl) GetResult(ctx context.Context, username string) (*domain.ResultDetail, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("user %q not found", username))
	}
	stored, err := s.resultRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load exam result", err)
	}
	if stored == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("user %q has not submitted the exam", username))
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

func (s *resultServiceImpl) Export(ctx context.Context) ([]byte, error) {
	summaries, err := s.ListResults(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Get().Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	index, err := f.NewSheet(resultsSheetName)
	if err != nil {
		return nil, domain.NewInternalError("failed to create results sheet", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, domain.NewInternalError("failed to prepare workbook", err)
	}

	headers := []interface{}{
		"Username", "Reading", "Reading Total", "Listening", "Listening Total",
		"Writing", "Writing Total", "Total Score", "Total Questions", "Percentage", "Submitted At", "Legacy",
	}
	if err := f.SetSheetRow(resultsSheetName, "A1", &headers); err != nil {
		return nil, domain.NewInternalError("failed to write header row", err)
	}
	for i, sum := range summaries {
		row := []interface{}{
			sum.Username,
			sum.Reading.Score, sum.Reading.Total,
			sum.Listening.Score, sum.Listening.Total,
			sum.Writing.Score, sum.Writing.Total,
			sum.TotalScore, sum.TotalQuestions,
			sum.Percentage,
			sum.SubmittedAt.UTC().Format(time.RFC3339),
			legacyLabel(sum.Legacy),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, domain.NewInternalError("failed to address result row", err)
		}
		if err := f.SetSheetRow(resultsSheetName, cell, &row); err != nil {
			return nil, domain.NewInternalError("failed to write result row", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, domain.NewInternalError("failed to render workbook", err)
	}
	return buf.Bytes(), nil
}

func legacyLabel(legacy bool) string {
	if legacy {
		return "yes"
	}
	return "no"
}
