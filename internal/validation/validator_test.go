package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "usermgmt/internal/errors"
)

type signUp struct {
	Name     string  `json:"name" validate:"required,min=2,max=255"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

func strPtr(s string) *string { return &s }

func TestValidator_Valid(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&signUp{Name: "John", Email: "john@example.com", Password: "password123"}))
	assert.NoError(t, v.Validate(&signUp{Name: "John", Email: "john@example.com", Password: "password123", Role: strPtr("admin")}))
}

func TestValidator_FieldErrors(t *testing.T) {
	v := New()

	err := v.Validate(&signUp{Name: "J", Email: "nope", Role: strPtr("root")})
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)

	got := map[string]string{}
	for _, d := range appErr.Details {
		got[d.Field] = d.Message
	}
	assert.Equal(t, map[string]string{
		"name":     "must be at least 2 characters",
		"email":    "must be a valid email address",
		"password": "is required",
		"role":     "must be one of: user, admin",
	}, got)
}

type rename struct {
	Name *string `json:"name,omitempty" validate:"omitempty,notblank,min=2"`
}

func TestValidator_NotBlank(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&rename{}))
	assert.NoError(t, v.Validate(&rename{Name: strPtr("Bob")}))

	err := v.Validate(&rename{Name: strPtr("   ")})
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, apperrors.FieldError{Field: "name", Message: "must not be blank"}, appErr.Details[0])
}
