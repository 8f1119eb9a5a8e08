package service

import (
	"errors"
	"fmt"
)

// Domain errors returned by the services. Handlers map them to pages.
var (
	ErrAlreadyExists      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicateReview    = errors.New("review already posted for this book")
	ErrBookNotFound       = errors.New("book not found")
)

// User-facing messages for rejected input.
const (
	MsgEnterUsername    = "Please enter username. Go back and try again!"
	MsgEnterPassword    = "Please enter password. Go back and try again!"
	MsgPasswordMismatch = "Passwords do not match! Go back and try again!"
	MsgEnterReview      = "Please enter a review. Go back and try again!"
)

// ValidationError reports input rejected before any storage access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// RatingRangeMessage is the message shown for a rating outside [lo, hi].
func RatingRangeMessage(lo, hi int) string {
	return fmt.Sprintf("Please choose a rating between %d and %d. Go back and try again!", lo, hi)
}
