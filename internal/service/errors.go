package service

import (
	"errors"
	"strings"

	"github.com/maheshrc27/contentflow/internal/platform"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrNotImplemented = errors.New("not implemented")
	ErrForbidden      = errors.New("forbidden")
)

// ValidationError carries the adapter issues that blocked an operation.
type ValidationError struct {
	Issues []platform.Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		if i.Platform != "" {
			msgs = append(msgs, i.Platform+": "+i.Message)
		} else {
			msgs = append(msgs, i.Message)
		}
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Issues: []platform.Issue{{Field: field, Message: message}}}
}
