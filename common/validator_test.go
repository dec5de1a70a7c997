// common/validator_test.go
package common

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUpForm struct {
	Username string `json:"username" validate:"required,min=4,max=20,username"`
	Password string `json:"password" validate:"required,min=8,password_policy"`
	Phone    string `json:"phoneNumber" validate:"required,mobile"`
	Slug     string `json:"slug" validate:"omitempty,slug"`
	Name     string `json:"memberName" validate:"required,person_name"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid form", func(t *testing.T) {
		form := signUpForm{Username: "student_01", Password: "secret12!", Phone: "010-1234-5678", Slug: "spring-event", Name: "홍길동"}
		assert.Nil(t, ValidateStruct(&form))
	})

	t.Run("details are keyed by json name", func(t *testing.T) {
		form := signUpForm{Username: "ab", Password: "password", Phone: "01012345678", Slug: "no spaces", Name: "R2D2"}

		appErr := ValidateStruct(&form)

		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Status)
		assert.Equal(t, ErrInvalidInput.Code, appErr.Code)
		assert.Equal(t, "must be at least 4 characters", appErr.Details["username"])
		assert.Equal(t, "must contain a letter, a digit and a special character", appErr.Details["password"])
		assert.Equal(t, "must look like 010-1234-5678", appErr.Details["phoneNumber"])
		assert.Equal(t, "may only contain letters, digits and hyphens", appErr.Details["slug"])
		assert.Equal(t, "may only contain Korean or English letters", appErr.Details["memberName"])
	})
}

func TestValidateAndDecode(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":`))
	var form signUpForm

	appErr := ValidateAndDecode(req, &form)

	require.NotNil(t, appErr)
	assert.Equal(t, "Invalid request body", appErr.Message)
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("abc123!@"))
	assert.False(t, IsValidPassword("abcdefgh"))
	assert.False(t, IsValidPassword("abc12345"))
	assert.False(t, IsValidPassword("!!!12345"))
}

func TestIsValidSlug(t *testing.T) {
	assert.True(t, IsValidSlug("Spring-2024"))
	assert.False(t, IsValidSlug("spring_2024"))
	assert.False(t, IsValidSlug(""))
}
