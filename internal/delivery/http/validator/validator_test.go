package validator

import (
	"testing"

	domainerrors "identity/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type pageRequest struct {
	Limit int `query:"limit" validate:"omitempty,max=100"`
}

func TestCustomValidator_Validate(t *testing.T) {
	v := New()

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(&signupRequest{Email: "a@example.com", Password: "long-enough"}))
	})

	t.Run("reports json field names", func(t *testing.T) {
		err := v.Validate(&signupRequest{Email: "not-an-email", Password: "short"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

		var appErr domainerrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "email must be a valid email address; password must be at least 8", appErr.Details())
		assert.Equal(t, "Input validation failed", appErr.Message())
	})

	t.Run("required", func(t *testing.T) {
		err := v.Validate(&signupRequest{})

		var appErr domainerrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Contains(t, appErr.Details(), "email is required")
		assert.Contains(t, appErr.Details(), "password is required")
	})

	t.Run("query field names", func(t *testing.T) {
		err := v.Validate(&pageRequest{Limit: 500})

		var appErr domainerrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "limit must be at most 100", appErr.Details())
	})
}
