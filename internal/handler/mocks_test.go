package handler_test

import (
	"context"
	"io"
	"time"

	"exam-express/internal/domain"
	"exam-express/internal/dto"
)

// --- Manual Mocks ---

// MockAuthService
type MockAuthService struct {
	LoginFunc       func(ctx context.Context, username, password string) (*dto.LoginResponse, error)
	ValidateJWTFunc func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	panic("MockAuthService.LoginFunc not implemented")
}
func (m *MockAuthService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	if m.ValidateJWTFunc != nil {
		return m.ValidateJWTFunc(ctx, tokenString)
	}
	panic("MockAuthService.ValidateJWTFunc not implemented")
}

// MockExamService
type MockExamService struct {
	LayoutFunc   func(ctx context.Context) (domain.ExamLayout, error)
	SubmitFunc   func(ctx context.Context, userID string, answers domain.ExamAnswers) (*domain.GradingResult, time.Time, error)
	MyResultFunc func(ctx context.Context, userID string) (*domain.ResultDetail, error)
}

func (m *MockExamService) Layout(ctx context.Context) (domain.ExamLayout, error) {
	if m.LayoutFunc != nil {
		return m.LayoutFunc(ctx)
	}
	panic("MockExamService.LayoutFunc not implemented")
}
func (m *MockExamService) Submit(ctx context.Context, userID string, answers domain.ExamAnswers) (*domain.GradingResult, time.Time, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, userID, answers)
	}
	panic("MockExamService.SubmitFunc not implemented")
}
func (m *MockExamService) MyResult(ctx context.Context, userID string) (*domain.ResultDetail, error) {
	if m.MyResultFunc != nil {
		return m.MyResultFunc(ctx, userID)
	}
	panic("MockExamService.MyResultFunc not implemented")
}

// MockUserService
type MockUserService struct {
	ListUsersFunc     func(ctx context.Context) (*dto.UserListResponse, error)
	CreateUserFunc    func(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	DeleteUserFunc    func(ctx context.Context, username string) error
	ResetUserExamFunc func(ctx context.Context, username string) error
}

func (m *MockUserService) ListUsers(ctx context.Context) (*dto.UserListResponse, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	panic("MockUserService.ListUsersFunc not implemented")
}
func (m *MockUserService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, req)
	}
	panic("MockUserService.CreateUserFunc not implemented")
}
func (m *MockUserService) DeleteUser(ctx context.Context, username string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, username)
	}
	panic("MockUserService.DeleteUserFunc not implemented")
}
func (m *MockUserService) ResetUserExam(ctx context.Context, username string) error {
	if m.ResetUserExamFunc != nil {
		return m.ResetUserExamFunc(ctx, username)
	}
	panic("MockUserService.ResetUserExamFunc not implemented")
}

// MockAnswerKeyService
type MockAnswerKeyService struct {
	GetCurrentFunc func(ctx context.Context) (domain.AnswerKey, error)
	SaveFunc       func(ctx context.Context, raw []byte) (domain.AnswerKey, error)
	LayoutFunc     func(ctx context.Context) (domain.ExamLayout, error)
	SetPDFURLFunc  func(ctx context.Context, url string) (domain.AnswerKey, error)
}

func (m *MockAnswerKeyService) GetCurrent(ctx context.Context) (domain.AnswerKey, error) {
	if m.GetCurrentFunc != nil {
		return m.GetCurrentFunc(ctx)
	}
	panic("MockAnswerKeyService.GetCurrentFunc not implemented")
}
func (m *MockAnswerKeyService) Save(ctx context.Context, raw []byte) (domain.AnswerKey, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, raw)
	}
	panic("MockAnswerKeyService.SaveFunc not implemented")
}
func (m *MockAnswerKeyService) Layout(ctx context.Context) (domain.ExamLayout, error) {
	if m.LayoutFunc != nil {
		return m.LayoutFunc(ctx)
	}
	panic("MockAnswerKeyService.LayoutFunc not implemented")
}
func (m *MockAnswerKeyService) SetPDFURL(ctx context.Context, url string) (domain.AnswerKey, error) {
	if m.SetPDFURLFunc != nil {
		return m.SetPDFURLFunc(ctx, url)
	}
	panic("MockAnswerKeyService.SetPDFURLFunc not implemented")
}

// MockResultService
type MockResultService struct {
	ListResultsFunc func(ctx context.Context) ([]domain.ResultSummary, error)
	GetResultFunc   func(ctx context.Context, username string) (*domain.ResultDetail, error)
	ExportFunc      func(ctx context.Context) ([]byte, error)
}

func (m *MockResultService) ListResults(ctx context.Context) ([]domain.ResultSummary, error) {
	if m.ListResultsFunc != nil {
		return m.ListResultsFunc(ctx)
	}
	panic("MockResultService.ListResultsFunc not implemented")
}
func (m *MockResultService) GetResult(ctx context.Context, username string) (*domain.ResultDetail, error) {
	if m.GetResultFunc != nil {
		return m.GetResultFunc(ctx, username)
	}
	panic("MockResultService.GetResultFunc not implemented")
}
func (m *MockResultService) Export(ctx context.Context) ([]byte, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx)
	}
	panic("MockResultService.ExportFunc not implemented")
}

// MockBlobStore
type MockBlobStore struct {
	PutFunc func(ctx context.Context, key string, r io.Reader) (string, error)
}

func (m *MockBlobStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, r)
	}
	panic("MockBlobStore.PutFunc not implemented")
}
func (m *MockBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	panic("MockBlobStore.Get not implemented")
}
func (m *MockBlobStore) URL(key string) string {
	return "/files/" + key
}
