package entity

import "errors"

// Errors returned by the storage layer. Every store implementation must return
// these (possibly wrapped) so callers can tell contention from failure.
var (
	ErrNoTicketsAvailable  = errors.New("no tickets available")
	ErrDuplicateBooking    = errors.New("child already has an active booking for this class")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrAlreadyCancelled    = errors.New("booking already cancelled")
	ErrBookingNotConfirmed = errors.New("booking is not confirmed")
	ErrTicketNotFound      = errors.New("ticket unit not found")
	ErrChildNotFound       = errors.New("child not found")
	ErrClassNotFound       = errors.New("class not found")
	ErrCapacityLocked      = errors.New("capacity cannot change once bookings exist")
)
