package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyItems is returned when a submitted cart has no line items.
	ErrEmptyItems = errors.New("order must contain at least one item")
	// ErrInvalidQuantity is returned when an item quantity is not a positive integer.
	ErrInvalidQuantity = errors.New("item quantity must be greater than zero")
	// ErrLessonIDRequired is returned when an item has no lesson reference.
	ErrLessonIDRequired = errors.New("item lesson_id is required")
	// ErrLessonNotFound is returned when a lesson id does not resolve.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrOrderNotFound is returned when an order id does not resolve.
	ErrOrderNotFound = errors.New("order not found")
	// ErrUserNotFound is returned when a login username is unknown.
	ErrUserNotFound = errors.New("user not found")
	// ErrInsufficientSpaces is returned when a reservation would take
	// a lesson's spaces below zero.
	ErrInsufficientSpaces = errors.New("insufficient spaces")
	// ErrInvalidTransition is returned when a status change leaves the
	// order state machine (pending -> cancelled | fulfilled).
	ErrInvalidTransition = errors.New("invalid status transition")
)

// CapacityError wraps ErrInsufficientSpaces with the offending lesson so the
// caller can report which line item failed.
type CapacityError struct {
	LessonID  string
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient spaces for lesson %s: requested %d, available %d",
		e.LessonID, e.Requested, e.Available)
}

func (e *CapacityError) Unwrap() error { return ErrInsufficientSpaces }
