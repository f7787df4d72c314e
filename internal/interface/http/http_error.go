package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/projecthub/internal/domain/auth"
	"github.com/yanqian/projecthub/internal/domain/ratelimit"
	apperrors "github.com/yanqian/projecthub/pkg/errors"
)

const codeInvalidRequest = "invalid_request"

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return internalError(err)
}

// fromDomainError maps an AppError code onto a response. The body only ever carries the
// AppError's own message; causes stay in the logs.
func fromDomainError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	status := statusForCode(code)
	if status == http.StatusInternalServerError {
		return internalError(err)
	}
	return NewHTTPError(status, code, apperrors.PublicMessage(err), err)
}

func statusForCode(code string) int {
	switch code {
	case auth.CodeMissingToken, auth.CodeInvalidToken, auth.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case auth.CodeForbidden:
		return http.StatusForbidden
	case auth.CodeDuplicateEmail, auth.CodeInvalidInput, codeInvalidRequest:
		return http.StatusBadRequest
	case auth.CodeNotFound:
		return http.StatusNotFound
	case ratelimit.CodeTooManyAttempts:
		return http.StatusTooManyRequests
	case ratelimit.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func internalError(err error) *HTTPError {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func invalidRequest(err error) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, codeInvalidRequest, "invalid request body", err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
