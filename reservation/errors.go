package reservation

import (
	"errors"
	"fmt"
	"strings"
)

// Reason is why a booking attempt failed without leaving anything behind.
type Reason string

const (
	ReasonAlreadyBooked      Reason = "AlreadyBooked"
	ReasonNoTicketsAvailable Reason = "NoTicketsAvailable"
	ReasonClassFull          Reason = "ClassFull"
	ReasonIneligibleLevel    Reason = "IneligibleLevel"
	ReasonInactiveChild      Reason = "InactiveChild"
	ReasonClassNotBookable   Reason = "ClassNotBookable"
)

// Validation reports whether the reason was detected before any resource was
// touched. The rest are contention outcomes.
func (r Reason) Validation() bool {
	switch r {
	case ReasonIneligibleLevel, ReasonInactiveChild, ReasonClassNotBookable:
		return true
	}
	return false
}

var ErrInvalidAttendance = errors.New("attendance must be attended or no_show")

type Error struct {
	Reason Reason
}

func (e *Error) Error() string {
	return "booking failed: " + string(e.Reason)
}

func fail(r Reason) error {
	return &Error{Reason: r}
}

// ReasonOf returns the failure reason carried by err, if any. A failed
// compensation never counts as an expected failure.
func ReasonOf(err error) (Reason, bool) {
	var cerr *CompensationError
	if errors.As(err, &cerr) {
		return "", false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Reason, true
	}
	return "", false
}

const (
	ResourceTicketUnit    = "ticket_unit"
	ResourceClassCapacity = "class_capacity"
)

// CompensationError means a ticket unit or capacity slot is held with no
// booking referencing it. It needs reconciliation and is never a contention
// outcome.
type CompensationError struct {
	Operation    string
	State        State
	ChildID      string
	ClassID      string
	BookingID    string
	TicketUnitID string
	Resources    []string
	Err          error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%s compensation failed in state %s, leaked %s: %v",
		e.Operation, e.State, strings.Join(e.Resources, ", "), e.Err)
}

func (e *CompensationError) Unwrap() error {
	return e.Err
}
