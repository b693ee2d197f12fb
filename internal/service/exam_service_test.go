package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"exam-express/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type examFixture struct {
	svc     *examServiceImpl
	keys    *MockAnswerKeyService
	users   *MockUserRepository
	results *MockExamResultRepository
	tx      *MockTransactionManager
}

func newExamFixture() *examFixture {
	f := &examFixture{
		keys:    new(MockAnswerKeyService),
		users:   new(MockUserRepository),
		results: new(MockExamResultRepository),
		tx:      &MockTransactionManager{},
	}
	f.svc = NewExamService(f.keys, f.users, f.results, f.tx).(*examServiceImpl)
	f.svc.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func TestExamService_Submit(t *testing.T) {
	f := newExamFixture()
	f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Username: "anna"}, nil)
	f.results.On("GetByUserID", mock.Anything, "u1").Return(nil, nil)
	f.keys.On("GetCurrent", mock.Anything).Return(smallKey(), nil)
	f.results.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.ExamResult) bool {
		return r.UserID == "u1" && r.TotalScore == 2 && r.TotalQuestions == 3 && r.HasAnswers()
	})).Return(nil)
	f.users.On("SetCompleted", mock.Anything, "u1", true).Return(nil)

	answers := domain.ExamAnswers{
		Reading: map[string]string{"q1": "a"},
		Writing: map[string]string{"q1": "eins zwei drei"},
	}
	res, submittedAt, err := f.svc.Submit(context.Background(), "u1", answers)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalScore)
	assert.Equal(t, 67, res.Percentage)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), submittedAt)
	assert.Equal(t, 1, f.tx.Calls)
	f.results.AssertExpectations(t)
	f.users.AssertExpectations(t)
}

func TestExamService_Submit_AlreadyCompleted(t *testing.T) {
	f := newExamFixture()
	f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Username: "anna", IsCompleted: true}, nil)

	_, _, err := f.svc.Submit(context.Background(), "u1", domain.ExamAnswers{})
	assert.True(t, domain.IsErrorCode(err, domain.CodeAlreadySubmitted))
	f.keys.AssertNotCalled(t, "GetCurrent", mock.Anything)
}

func TestExamService_Submit_ExistingResult(t *testing.T) {
	f := newExamFixture()
	f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Username: "anna"}, nil)
	f.results.On("GetByUserID", mock.Anything, "u1").Return(&domain.ExamResult{ID: "r1"}, nil)

	_, _, err := f.svc.Submit(context.Background(), "u1", domain.ExamAnswers{})
	assert.True(t, domain.IsErrorCode(err, domain.CodeAlreadySubmitted))
}

func TestExamService_Submit_ConcurrentInsertLoses(t *testing.T) {
	f := newExamFixture()
	f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Username: "anna"}, nil)
	f.results.On("GetByUserID", mock.Anything, "u1").Return(nil, nil)
	f.keys.On("GetCurrent", mock.Anything).Return(smallKey(), nil)
	f.results.On("Create", mock.Anything, mock.Anything).Return(domain.NewConflictError("duplicate"))

	_, _, err := f.svc.Submit(context.Background(), "u1", domain.ExamAnswers{})
	assert.True(t, domain.IsErrorCode(err, domain.CodeAlreadySubmitted))
	f.users.AssertNotCalled(t, "SetCompleted", mock.Anything, mock.Anything, mock.Anything)
}

func TestExamService_Submit_PersistFailureReturnsNoResult(t *testing.T) {
	f := newExamFixture()
	f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Username: "anna"}, nil)
	f.results.On("GetByUserID", mock.Anything, "u1").Return(nil, nil)
	f.keys.On("GetCurrent", mock.Anything).Return(smallKey(), nil)
	f.results.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.users.On("SetCompleted", mock.Anything, "u1", true).Return(errors.New("db down"))

	res, _, err := f.svc.Submit(context.Background(), "u1", domain.ExamAnswers{})
	assert.Nil(t, res)
	assert.True(t, domain.IsErrorCode(err, domain.CodeInternal))
}

func TestExamService_Submit_MalformedKey(t *testing.T) {
	f := newExamFixture()
	f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Username: "anna"}, nil)
	f.results.On("GetByUserID", mock.Anything, "u1").Return(nil, nil)
	bad := smallKey()
	bad.Reading = nil
	f.keys.On("GetCurrent", mock.Anything).Return(bad, nil)

	_, _, err := f.svc.Submit(context.Background(), "u1", domain.ExamAnswers{})
	assert.ErrorIs(t, err, domain.ErrMalformedKey)
	assert.Equal(t, 0, f.tx.Calls)
}

func TestExamService_Submit_UnknownUser(t *testing.T) {
	f := newExamFixture()
	f.users.On("GetByID", mock.Anything, "u9").Return(nil, nil)

	_, _, err := f.svc.Submit(context.Background(), "u9", domain.ExamAnswers{})
	assert.True(t, domain.IsErrorCode(err, domain.CodeNotFound))
}

func TestExamService_MyResult(t *testing.T) {
	f := newExamFixture()
	submitted := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Username: "anna"}, nil)
	f.results.On("GetByUserID", mock.Anything, "u1").Return(&domain.ExamResult{
		UserID:      "u1",
		Answers:     &domain.ExamAnswers{Reading: map[string]string{"q1": "A"}},
		SubmittedAt: submitted,
	}, nil)
	f.keys.On("GetCurrent", mock.Anything).Return(smallKey(), nil)

	detail, err := f.svc.MyResult(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "anna", detail.Username)
	assert.Equal(t, submitted, detail.SubmittedAt)
	assert.Equal(t, 1, detail.Result.Reading.Score)
}

func TestExamService_MyResult_NotSubmitted(t *testing.T) {
	f := newExamFixture()
	f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Username: "anna"}, nil)
	f.results.On("GetByUserID", mock.Anything, "u1").Return(nil, nil)

	_, err := f.svc.MyResult(context.Background(), "u1")
	assert.True(t, domain.IsErrorCode(err, domain.CodeNotFound))
}

func TestExamService_Layout(t *testing.T) {
	f := newExamFixture()
	f.keys.On("Layout", mock.Anything).Return(domain.NewExamLayout(smallKey()), nil)

	layout, err := f.svc.Layout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, layout.Reading)
}
