package ledger

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every error returned by a Ledger operation matches
// exactly one of them with errors.Is.
var (
	ErrDuplicateID      = errors.New("ledger: duplicate id")
	ErrNotFound         = errors.New("ledger: not found")
	ErrScheduleConflict = errors.New("ledger: flight number already scheduled on that date")
	ErrInvalidDate      = errors.New("ledger: booking date outside the bookable window")
	ErrAlreadyBooked    = errors.New("ledger: customer already booked on flight")
	ErrInvalidInput     = errors.New("ledger: invalid input")
)

type Entity string

const (
	EntityFlight   Entity = "flight"
	EntityCustomer Entity = "customer"
	EntityBooking  Entity = "booking"
)

// Error carries the kind of failure together with the entity it concerns.
type Error struct {
	Kind   error
	Entity Entity
	ID     int64
	Detail string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s (%s)", e.Kind.Error(), e.Entity)
	if e.ID != 0 {
		msg = fmt.Sprintf("%s (%s #%d)", e.Kind.Error(), e.Entity, e.ID)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

func notFound(entity Entity, id int64) error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id}
}

func duplicateID(entity Entity, id int64) error {
	return &Error{Kind: ErrDuplicateID, Entity: entity, ID: id}
}

// ValidationError represents a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("ledger: validation failed for %s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// IsConflict reports whether err means the request clashes with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateID) ||
		errors.Is(err, ErrScheduleConflict) ||
		errors.Is(err, ErrAlreadyBooked)
}

// IsValidation reports whether err rejects the caller's input itself.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidDate) || errors.Is(err, ErrInvalidInput)
}
