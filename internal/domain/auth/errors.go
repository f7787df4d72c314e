package auth

import (
	"errors"

	apperrors "github.com/yanqian/projecthub/pkg/errors"
)

// Error codes surfaced by the auth core.
const (
	CodeMissingToken       = "missing_token"
	CodeInvalidToken       = "invalid_token"
	CodeInvalidCredentials = "invalid_credentials"
	CodeDuplicateEmail     = "email_exists"
	CodeInvalidInput       = "invalid_input"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeInternal           = "auth_error"
)

// ErrEmailExists indicates a duplicate email address.
var ErrEmailExists = errors.New("email already exists")

// The messages below are fixed so callers cannot tell causes apart.
func errInvalidToken() error {
	return apperrors.Wrap(CodeInvalidToken, "invalid or expired token", nil)
}

func errInvalidCredentials() error {
	return apperrors.Wrap(CodeInvalidCredentials, "invalid email or password", nil)
}

func errForbidden() error {
	return apperrors.Wrap(CodeForbidden, "you can only access your own resources", nil)
}

// ErrMissingToken builds the error returned when no bearer token was presented.
func ErrMissingToken() error {
	return apperrors.Wrap(CodeMissingToken, "access token required", nil)
}
