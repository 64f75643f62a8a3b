package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrReferenceNotFound  = errors.New("referenced record not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries per-field messages; it matches ErrValidationFailed
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return ErrValidationFailed.Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// isUniqueViolation detects duplicate key errors, translated or not
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
