package service

import (
	"context"
	"errors"
	"testing"

	"exam-express/internal/domain"
	"exam-express/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testAdminUsername = "admin"

func newTestUserService() (UserService, *MockUserRepository, *MockExamResultRepository, *MockTransactionManager) {
	users := new(MockUserRepository)
	results := new(MockExamResultRepository)
	tx := &MockTransactionManager{}
	return NewUserService(users, results, tx, testAdminUsername), users, results, tx
}

func TestUserService_ListUsers(t *testing.T) {
	svc, users, _, _ := newTestUserService()
	users.On("List", mock.Anything).Return([]*domain.User{
		{ID: "1", Username: "anna", PasswordHash: "x"},
		{ID: "2", Username: "ben", IsCompleted: true},
	}, nil)

	resp, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Users, 2)
	assert.True(t, resp.Users[0].HasPassword)
	assert.True(t, resp.Users[1].IsCompleted)
}

func TestUserService_CreateUser(t *testing.T) {
	svc, users, _, _ := newTestUserService()
	users.On("GetByUsername", mock.Anything, "anna").Return(nil, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "anna" && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")) == nil
	})).Return(nil)

	resp, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{Username: " anna ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "anna", resp.Username)
	assert.NotEmpty(t, resp.ID)
	assert.True(t, resp.HasPassword)
	users.AssertExpectations(t)
}

func TestUserService_CreateUser_WithoutPassword(t *testing.T) {
	svc, users, _, _ := newTestUserService()
	users.On("GetByUsername", mock.Anything, "ben").Return(nil, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool { return u.PasswordHash == "" })).Return(nil)

	resp, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{Username: "ben"})
	require.NoError(t, err)
	assert.False(t, resp.HasPassword)
}

func TestUserService_CreateUser_Duplicate(t *testing.T) {
	svc, users, _, _ := newTestUserService()
	users.On("GetByUsername", mock.Anything, "anna").Return(&domain.User{ID: "1", Username: "anna"}, nil)

	_, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{Username: "anna"})
	assert.True(t, domain.IsErrorCode(err, domain.CodeConflict))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_CreateUser_AdminUsernameReserved(t *testing.T) {
	svc, users, _, _ := newTestUserService()

	for _, name := range []string{"admin", "  admin "} {
		_, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{Username: name})
		require.Error(t, err)
		assert.True(t, domain.IsErrorCode(err, domain.CodeConflict), name)
	}
	users.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_DeleteUser(t *testing.T) {
	svc, users, results, tx := newTestUserService()
	users.On("GetByUsername", mock.Anything, "anna").Return(&domain.User{ID: "u1", Username: "anna"}, nil)
	results.On("DeleteByUserID", mock.Anything, "u1").Return(nil)
	users.On("Delete", mock.Anything, "u1").Return(nil)

	require.NoError(t, svc.DeleteUser(context.Background(), "anna"))
	assert.Equal(t, 1, tx.Calls)
	users.AssertExpectations(t)
	results.AssertExpectations(t)
}

func TestUserService_DeleteUser_NotFound(t *testing.T) {
	svc, users, _, tx := newTestUserService()
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)

	err := svc.DeleteUser(context.Background(), "ghost")
	assert.True(t, domain.IsErrorCode(err, domain.CodeNotFound))
	assert.Equal(t, 0, tx.Calls)
}

func TestUserService_ResetUserExam(t *testing.T) {
	svc, users, results, _ := newTestUserService()
	users.On("GetByUsername", mock.Anything, "anna").Return(&domain.User{ID: "u1", Username: "anna", IsCompleted: true}, nil)
	results.On("DeleteByUserID", mock.Anything, "u1").Return(nil)
	users.On("SetCompleted", mock.Anything, "u1", false).Return(nil)

	require.NoError(t, svc.ResetUserExam(context.Background(), "anna"))
	users.AssertExpectations(t)
	results.AssertExpectations(t)
}

func TestUserService_ResetUserExam_PropagatesFailure(t *testing.T) {
	svc, users, results, _ := newTestUserService()
	users.On("GetByUsername", mock.Anything, "anna").Return(&domain.User{ID: "u1", Username: "anna"}, nil)
	results.On("DeleteByUserID", mock.Anything, "u1").Return(errors.New("db down"))

	err := svc.ResetUserExam(context.Background(), "anna")
	assert.EqualError(t, err, "db down")
	users.AssertNotCalled(t, "SetCompleted", mock.Anything, mock.Anything, mock.Anything)
}
