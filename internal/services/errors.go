// Package services defines the business logic for cages, breeding, and chat
// registrations. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the bot and handler layers.
package services

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	// ErrSameGender is returned when both rabbits of a breeding pair share a gender.
	ErrSameGender = errors.New("rabbits of the same gender cannot be bred")

	// ErrCageEmpty is returned when an operation needs an occupant but the
	// cage has none.
	ErrCageEmpty = errors.New("cage is empty")

	// ErrNotFemale is returned when a female-only operation targets a male.
	ErrNotFemale = errors.New("rabbit is not a female")

	// ErrInvalidCage is returned for non-positive cage numbers.
	ErrInvalidCage = errors.New("cage number must be a positive integer")

	// ErrInvalidGender is returned when gender is neither male nor female.
	ErrInvalidGender = errors.New("gender must be male or female")

	// ErrEmptyName is returned when registering an occupant without a name.
	ErrEmptyName = errors.New("name is empty")
)

// ErrConcurrentUpdate indicates that the cage row changed between read and
// write. The caller may retry.
var ErrConcurrentUpdate = errors.New("cage was modified concurrently, try again")

// NotReadyError rejects a breeding attempt whose female is still resting.
type NotReadyError struct {
	DaysRemaining int
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("female is not ready: %d day(s) remaining.", e.DaysRemaining)
}

// IsValidation reports whether err is a user-correctable rejection rather
// than a store failure.
func IsValidation(err error) bool {
	var nr *NotReadyError
	switch {
	case errors.As(err, &nr),
		errors.Is(err, ErrSameGender),
		errors.Is(err, ErrCageEmpty),
		errors.Is(err, ErrNotFemale),
		errors.Is(err, ErrInvalidCage),
		errors.Is(err, ErrInvalidGender),
		errors.Is(err, ErrEmptyName):
		return true
	}
	return false
}
