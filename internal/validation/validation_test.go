package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(registerInput{Email: "not-an-email", Password: "short", PasswordConfirmation: "other"})
	require.Error(t, err)

	fieldErrs, ok := As(err)
	require.True(t, ok)
	assert.Contains(t, fieldErrs, "name")
	assert.Contains(t, fieldErrs, "email")
	assert.Contains(t, fieldErrs, "password")
	assert.Contains(t, fieldErrs, "password_confirmation")
	assert.Equal(t, []string{"The email field must be a valid email address."}, fieldErrs["email"])
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(registerInput{
		Name:                 "Aisyah",
		Email:                "aisyah@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	assert.NoError(t, err)
}

func TestErrors_Wrapped(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), Field("email", "The email has already been taken."))
	fieldErrs, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "The email has already been taken.", fieldErrs.Message())
}
