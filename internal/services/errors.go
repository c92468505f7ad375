package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/learning-service/internal/utils"
)

// Error categories. Every specific error below wraps exactly one of them,
// handlers map categories to HTTP statuses.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidState     = errors.New("invalid state")
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
)

// Course errors
var (
	ErrCourseNotFound = fmt.Errorf("%w: course not found", ErrNotFound)
	ErrModuleNotFound = fmt.Errorf("%w: module not found", ErrNotFound)
	ErrCourseInactive = fmt.Errorf("%w: course is not active", ErrInvalidState)
)

// Progress errors
var (
	ErrNotEnrolled      = fmt.Errorf("%w: not enrolled in course", ErrForbidden)
	ErrAlreadyCompleted = fmt.Errorf("%w: module already completed", ErrInvalidState)
	ErrAlreadyEnrolled  = fmt.Errorf("%w: already enrolled in course", ErrInvalidState)
)

// Test errors
var (
	ErrTestNotFound    = fmt.Errorf("%w: test not found", ErrNotFound)
	ErrStudentNotFound = fmt.Errorf("%w: student not found", ErrNotFound)
)

// User errors
var (
	ErrUserNotFound        = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrEmailTaken          = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrUserNotApproved     = fmt.Errorf("%w: account awaiting approval", ErrForbidden)
	ErrUserAlreadyApproved = fmt.Errorf("%w: user already approved", ErrInvalidState)
	ErrNotAStudent         = fmt.Errorf("%w: user is not a student", ErrInvalidState)
)

type ValidationError = utils.ValidationError
type ValidationErrors = utils.ValidationErrors

// PermissionError describes a denied action on a resource
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}
