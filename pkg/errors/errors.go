package errors

import (
	"errors"
	"fmt"
)

// Error codes for the progression service.
const (
	// Domain errors
	ErrCodeMissionNotFound     = "MISSION_NOT_FOUND"
	ErrCodeAchievementNotFound = "ACHIEVEMENT_NOT_FOUND"
	ErrCodeNotCompleted        = "NOT_COMPLETED"
	ErrCodeAlreadyClaimed      = "ALREADY_CLAIMED"
	ErrCodeNotEligible         = "NOT_ELIGIBLE"

	// Storage errors
	ErrCodeStoreError = "STORE_ERROR"

	// Config errors
	ErrCodeConfigInvalid = "CONFIG_INVALID"

	// Reward grant errors
	ErrCodeRewardGrantFailed = "REWARD_GRANT_FAILED"

	// Validation errors
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidInput     = "INVALID_INPUT"

	// Mission selection errors
	ErrCodeInsufficientTemplates = "INSUFFICIENT_TEMPLATES"
)

// ProgressionError represents an error in the progression service.
type ProgressionError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProgressionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProgressionError) Unwrap() error {
	return e.Err
}

// NewProgressionError creates a new ProgressionError.
func NewProgressionError(code, message string, err error) *ProgressionError {
	return &ProgressionError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first ProgressionError in err's chain,
// or "" if there is none.
func CodeOf(err error) string {
	var pe *ProgressionError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// Domain-specific error constructors

// ErrMissionNotFound returns an error when a mission is not in the active set.
func ErrMissionNotFound(missionID string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeMissionNotFound,
		Message: fmt.Sprintf("mission not found: %s", missionID),
		Err:     nil,
	}
}

// ErrAchievementNotFound returns an error when an achievement is not in the catalog.
func ErrAchievementNotFound(achievementID string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeAchievementNotFound,
		Message: fmt.Sprintf("achievement not found: %s", achievementID),
		Err:     nil,
	}
}

// ErrNotCompleted returns an error when attempting to claim an incomplete item.
func ErrNotCompleted(itemID string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeNotCompleted,
		Message: fmt.Sprintf("not completed: %s", itemID),
		Err:     nil,
	}
}

// ErrAlreadyClaimed returns an error when attempting to claim an item twice.
func ErrAlreadyClaimed(itemID string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeAlreadyClaimed,
		Message: fmt.Sprintf("already claimed: %s", itemID),
		Err:     nil,
	}
}

// ErrNotEligible returns an error when a claim is not allowed right now.
func ErrNotEligible(reason string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeNotEligible,
		Message: fmt.Sprintf("not eligible: %s", reason),
		Err:     nil,
	}
}

// ErrStoreError wraps key-value store errors.
func ErrStoreError(operation string, err error) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeStoreError,
		Message: fmt.Sprintf("store error during %s", operation),
		Err:     err,
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(reason string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeConfigInvalid,
		Message: fmt.Sprintf("invalid configuration: %s", reason),
		Err:     nil,
	}
}

// ErrRewardGrantFailed returns an error when granting a claimed reward fails.
func ErrRewardGrantFailed(itemID string, err error) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeRewardGrantFailed,
		Message: fmt.Sprintf("failed to grant reward for: %s", itemID),
		Err:     err,
	}
}

// ErrValidationFailed returns a validation error.
func ErrValidationFailed(field, reason string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Err:     nil,
	}
}

// ErrInvalidInput returns an error for malformed caller input.
func ErrInvalidInput(reason string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf("invalid input: %s", reason),
		Err:     nil,
	}
}

// ErrInsufficientTemplates returns an error when a pool is too small to draw from.
func ErrInsufficientTemplates(available, requested int) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeInsufficientTemplates,
		Message: fmt.Sprintf("not enough mission templates (available: %d, requested: %d)", available, requested),
		Err:     nil,
	}
}
