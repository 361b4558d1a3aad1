package services

import (
	"errors"

	apperrors "github.com/SAP-F-2025/exam-trainer-service/internal/errors"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Content errors
	ErrContentUnavailable = repositories.ErrContentUnavailable
	ErrUnknownExamType    = errors.New("unknown exam type")

	// History errors
	ErrResultNotFound  = errors.New("exam result not found")
	ErrUserIDRequired  = errors.New("user id is required")
	ErrTimestampsInUse = errors.New("could not allocate a unique attempt timestamp")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, repositories.ErrNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrUserIDRequired) ||
		errors.Is(err, ErrUnknownExamType) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, repositories.ErrDuplicate)
}

// IsContentUnavailable checks if the catalog could not be loaded
func IsContentUnavailable(err error) bool {
	return errors.Is(err, ErrContentUnavailable)
}
