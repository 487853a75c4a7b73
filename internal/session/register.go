package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"medunit-portal/internal/domain"
)

// RegisterPayload is the account-creation form. ConfirmPassword never leaves
// the client.
type RegisterPayload struct {
	Name            string      `json:"name" validate:"required"`
	Email           string      `json:"email" validate:"required,email"`
	Password        string      `json:"password" validate:"required,min=6"`
	ConfirmPassword string      `json:"-" validate:"eqfield=Password"`
	Role            domain.Role `json:"role" validate:"required,oneof=patient doctor"`
	StudentID       string      `json:"studentId,omitempty"`
	Specialization  string      `json:"specialization,omitempty"`
}

// ResetPasswordPayload completes a password reset.
type ResetPasswordPayload struct {
	Token           string `json:"token" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"-" validate:"eqfield=NewPassword"`
}

var validate = validator.New()

// Validate checks a form struct and reports the first problem as a
// ValidationError.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fieldError(ve[0])
	}
	return domain.NewValidationError("", err.Error())
}

func fieldError(fe validator.FieldError) error {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field, "is required")
	case "email":
		return domain.NewValidationError(field, "must be a valid email")
	case "min":
		return domain.NewValidationError(field, fmt.Sprintf("must be at least %s characters long", fe.Param()))
	case "eqfield":
		return domain.NewValidationError("", "passwords do not match")
	case "oneof":
		return domain.NewValidationError(field, "must be one of: "+fe.Param())
	}
	return domain.NewValidationError(field, fmt.Sprintf("failed validation (%s)", fe.Tag()))
}
