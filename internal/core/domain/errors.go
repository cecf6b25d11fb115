package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPartNotFound       = errors.New("part not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("unauthorized")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid username or birthdate")
	ErrUserExists         = errors.New("user already exists")
	ErrValidation         = errors.New("validation failed")
	ErrEmptyUpload        = errors.New("uploaded file is empty")
	ErrInvalidUpload      = errors.New("invalid upload")
)

// ValidationError describes a missing or malformed form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Upload stages reported by UpstreamError.
const (
	StageLoad      = "load"
	StageSave      = "save"
	StageThumbnail = "thumbnail"
	StagePreview   = "preview"
)

// UpstreamError wraps a failure of the document store or the media host.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError wraps err with the stage it happened in.
func NewUpstreamError(stage string, err error) *UpstreamError {
	return &UpstreamError{Stage: stage, Err: err}
}
