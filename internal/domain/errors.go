package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSlotNotFound     = errors.New("slot not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrUnknownCategory  = errors.New("ticket category does not belong to the slot's activity")
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrCapacityExceeded = errors.New("requested seats exceed remaining capacity")
	// ErrConflictRetry marks a transient serialization conflict; the
	// reservation path retries these internally.
	ErrConflictRetry = errors.New("transient transaction conflict")
	// ErrRetryExhausted means contention outlived the retry budget.
	// Safe for the caller to resubmit.
	ErrRetryExhausted = errors.New("reservation retry budget exhausted")
)

// CapacityError carries the remaining seats so the boundary layer can
// report them to the client. errors.Is(err, ErrCapacityExceeded) holds.
type CapacityError struct {
	SlotID    string
	Requested int
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("slot %s: requested %d seats, %d remaining", e.SlotID, e.Requested, e.Remaining)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}
