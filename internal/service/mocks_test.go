package service

import (
	"context"
	"time"

	"exam-express/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) SetCompleted(ctx context.Context, id string, completed bool) error {
	args := m.Called(ctx, id, completed)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- MockAnswerKeyRepository ---
type MockAnswerKeyRepository struct {
	mock.Mock
}

func (m *MockAnswerKeyRepository) GetLatest(ctx context.Context) (*domain.AnswerKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnswerKey), args.Error(1)
}

func (m *MockAnswerKeyRepository) Save(ctx context.Context, key *domain.AnswerKey) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

// --- MockExamResultRepository ---
type MockExamResultRepository struct {
	mock.Mock
}

func (m *MockExamResultRepository) Create(ctx context.Context, result *domain.ExamResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockExamResultRepository) GetByUserID(ctx context.Context, userID string) (*domain.ExamResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExamResult), args.Error(1)
}

func (m *MockExamResultRepository) List(ctx context.Context) ([]*domain.ExamResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ExamResult), args.Error(1)
}

func (m *MockExamResultRepository) DeleteByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- MockTransactionManager ---
// Runs fn directly; Calls records how often a transaction was opened.
type MockTransactionManager struct {
	Calls int
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockAnswerKeyService ---
type MockAnswerKeyService struct {
	mock.Mock
}

func (m *MockAnswerKeyService) GetCurrent(ctx context.Context) (domain.AnswerKey, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.AnswerKey), args.Error(1)
}

func (m *MockAnswerKeyService) Save(ctx context.Context, raw []byte) (domain.AnswerKey, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(domain.AnswerKey), args.Error(1)
}

func (m *MockAnswerKeyService) Layout(ctx context.Context) (domain.ExamLayout, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ExamLayout), args.Error(1)
}

func (m *MockAnswerKeyService) SetPDFURL(ctx context.Context, url string) (domain.AnswerKey, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(domain.AnswerKey), args.Error(1)
}
