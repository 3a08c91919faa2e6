package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Business errors returned by the reservation engine. Typed variants below
// unwrap to these so callers can match with errors.Is.
var (
	ErrUnitNotFound            = errors.New("unit not found")
	ErrReservationNotFound     = errors.New("reservation not found")
	ErrInvalidDateRange        = errors.New("check-out must be after check-in")
	ErrCapacityExceeded        = errors.New("guest capacity exceeded")
	ErrDateConflict            = errors.New("dates conflict with an existing reservation")
	ErrInvalidStateTransition  = errors.New("invalid state transition")
	ErrUnsupportedCurrencyPair = errors.New("unsupported currency pair")
	ErrInvalidInput            = errors.New("invalid input")
)

// CapacityLimit names the unit limit a party broke.
type CapacityLimit string

const (
	LimitAdults CapacityLimit = "adults"
	LimitTotal  CapacityLimit = "total"
)

// CapacityError reports which capacity limit was exceeded.
type CapacityError struct {
	UnitID    string        `json:"unit_id"`
	Limit     CapacityLimit `json:"limit"`
	Max       int           `json:"max"`
	Requested int           `json:"requested"`
}

func (e *CapacityError) Error() string {
	if e.Limit == LimitAdults {
		return fmt.Sprintf("unit %s allows at most %d adults, requested %d", e.UnitID, e.Max, e.Requested)
	}
	return fmt.Sprintf("unit %s allows at most %d guests, requested %d", e.UnitID, e.Max, e.Requested)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// ConflictRef identifies a reservation blocking a requested range.
type ConflictRef struct {
	ReservationID      string    `json:"reservation_id"`
	ConfirmationNumber string    `json:"confirmation_number"`
	CheckIn            time.Time `json:"check_in"`
	CheckOut           time.Time `json:"check_out"`
}

// DateConflictError lists the reservations overlapping a requested range.
type DateConflictError struct {
	UnitID    string        `json:"unit_id"`
	Conflicts []ConflictRef `json:"conflicts"`
}

func (e *DateConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s (%s to %s)",
			c.ReservationID, c.CheckIn.Format(DateLayout), c.CheckOut.Format(DateLayout)))
	}
	return fmt.Sprintf("unit %s is already booked: %s", e.UnitID, strings.Join(parts, ", "))
}

func (e *DateConflictError) Unwrap() error { return ErrDateConflict }

// NewDateConflictError builds a DateConflictError from the conflicting reservations.
func NewDateConflictError(unitID string, conflicts []Reservation) *DateConflictError {
	e := &DateConflictError{UnitID: unitID, Conflicts: make([]ConflictRef, 0, len(conflicts))}
	for _, r := range conflicts {
		e.Conflicts = append(e.Conflicts, ConflictRef{
			ReservationID:      r.ID,
			ConfirmationNumber: r.ConfirmationNumber,
			CheckIn:            r.Dates.CheckIn,
			CheckOut:           r.Dates.CheckOut,
		})
	}
	return e
}

// TransitionError reports a lifecycle operation attempted from a forbidden state.
type TransitionError struct {
	Current   Status `json:"current"`
	Operation string `json:"operation"`
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a reservation that is %s", e.Operation, e.Current)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStateTransition }

// CurrencyPairError names the unsupported conversion.
type CurrencyPairError struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (e *CurrencyPairError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
}

func (e *CurrencyPairError) Unwrap() error { return ErrUnsupportedCurrencyPair }

// ErrorKind maps an error to a stable snake_case name used in responses and
// metric labels. Unknown errors are "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnitNotFound):
		return "unit_not_found"
	case errors.Is(err, ErrReservationNotFound):
		return "reservation_not_found"
	case errors.Is(err, ErrInvalidDateRange):
		return "invalid_date_range"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrDateConflict):
		return "date_conflict"
	case errors.Is(err, ErrInvalidStateTransition):
		return "invalid_state_transition"
	case errors.Is(err, ErrUnsupportedCurrencyPair):
		return "unsupported_currency_pair"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	}
	return "internal"
}
