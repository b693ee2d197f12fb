package validation

import (
	"fmt"
	"strings"
	"testing"

	"exam-express/internal/domain"
	"exam-express/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_LoginRequest(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(dto.LoginRequest{Username: "anna"}))

	err := v.Struct(dto.LoginRequest{})
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "username", verrs[0].Field)
	assert.Equal(t, domain.CodeMissingField, verrs[0].Code)
}

func TestValidator_CreateUserRequest(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(dto.CreateUserRequest{Username: "anna"}))
	assert.NoError(t, v.Struct(dto.CreateUserRequest{Username: "anna", Password: "secret"}))

	err := v.Struct(dto.CreateUserRequest{Username: "anna", Password: "abc"})
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "password", verrs[0].Field)
	assert.Equal(t, "must be at least 4 characters", verrs[0].Message)
}

func TestValidator_CreateUserRequest_UsernameCharset(t *testing.T) {
	v := NewValidator()

	for _, name := range []string{"export", "anna.schmidt", "a_b-c", "anna@example.com", "42"} {
		assert.NoError(t, v.Struct(dto.CreateUserRequest{Username: name}), name)
	}

	for _, name := range []string{"a/b", "has space", "../admin", ".hidden", "-dash", "anna?x=1", "anna%2F", "ünal"} {
		err := v.Struct(dto.CreateUserRequest{Username: name})
		var verrs domain.ValidationErrors
		require.ErrorAs(t, err, &verrs, name)
		assert.Equal(t, "username", verrs[0].Field)
		assert.Contains(t, verrs[0].Message, "letters, digits")
	}
}

func TestValidator_SubmitExamRequest(t *testing.T) {
	v := NewValidator()

	ok := dto.SubmitExamRequest{
		Reading: map[string]string{"q1": "B"},
		Writing: map[string]string{"q1": strings.Repeat("wort ", 30)},
	}
	assert.NoError(t, v.Struct(ok))

	tooLong := dto.SubmitExamRequest{Reading: map[string]string{"q1": strings.Repeat("x", 501)}}
	err := v.Struct(tooLong)
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "reading[q1]", verrs[0].Field)
}

func TestValidator_SubmitExamRequest_LargeSections(t *testing.T) {
	v := NewValidator()

	reading := make(map[string]string, 500)
	for i := 0; i < 500; i++ {
		reading[fmt.Sprintf("q%d", i+1)] = "A"
	}
	assert.NoError(t, v.Struct(dto.SubmitExamRequest{Reading: reading, Listening: reading}))
}
