package gateway

import (
	"regexp"

	apperrors "github.com/deskware/portal-client/internal/errors"
)

// minPasswordLength is the registration precondition enforced client-side.
const minPasswordLength = 4

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateRegistration runs the client-side precondition checks. A violation
// short-circuits the registration with a field-level failure; no network
// call is made.
func validateRegistration(in RegisterInput) *apperrors.AppError {
	if in.Username == "" {
		return apperrors.ValidationField("username", "Please fill out this field.")
	}
	if in.Email == "" {
		return apperrors.ValidationField("email", "Please fill out this field.")
	}
	if !emailRE.MatchString(in.Email) {
		return apperrors.ValidationField("email", "Please enter a valid email address")
	}
	if in.Password == "" {
		return apperrors.ValidationField("password", "Please fill out this field.")
	}
	if len(in.Password) < minPasswordLength {
		return apperrors.ValidationField("password", "Password must be at least 4 characters")
	}
	if in.Password != in.ConfirmPassword {
		return apperrors.ValidationField("confirmPassword", "Passwords do not match")
	}
	return nil
}
