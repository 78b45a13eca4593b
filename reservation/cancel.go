package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
	"github.com/pablofelipe01/rodapolo-sub000/event"
)

type CancelStatus string

const (
	CancelCancelled CancelStatus = "cancelled"
	CancelNotFound  CancelStatus = "not_found"
)

type CancelResult struct {
	Status CancelStatus `json:"status"`
	// AlreadyCancelled is set when nothing was released because an earlier
	// call already cancelled the booking.
	AlreadyCancelled bool `json:"already_cancelled,omitempty"`
}

// Cancel cancels a confirmed booking and gives back its capacity slot and
// ticket. Retrying a cancel is safe: the second call releases nothing.
func (o *Orchestrator) Cancel(ctx context.Context, bookingID, reason string) (CancelResult, error) {
	ticketUnitID, classID, err := o.bookings.Cancel(ctx, bookingID, reason)
	switch {
	case errors.Is(err, entity.ErrBookingNotFound):
		return CancelResult{Status: CancelNotFound}, nil
	case errors.Is(err, entity.ErrAlreadyCancelled):
		return CancelResult{Status: CancelCancelled, AlreadyCancelled: true}, nil
	case err != nil:
		return CancelResult{}, fmt.Errorf("cancelling booking: %w", err)
	}

	undoCtx := context.WithoutCancel(ctx)

	var (
		leaked []string
		errs   []error
	)
	if err := o.classes.Release(undoCtx, classID); err != nil {
		leaked = append(leaked, ResourceClassCapacity)
		errs = append(errs, fmt.Errorf("releasing capacity: %w", err))
	}
	if err := o.ledger.Release(undoCtx, ticketUnitID); err != nil {
		leaked = append(leaked, ResourceTicketUnit)
		errs = append(errs, fmt.Errorf("releasing ticket: %w", err))
	}
	if len(errs) > 0 {
		return CancelResult{}, o.compensationFailed(undoCtx, &CompensationError{
			Operation:    "cancel",
			State:        StateCommitted,
			ClassID:      classID,
			BookingID:    bookingID,
			TicketUnitID: ticketUnitID,
			Resources:    leaked,
			Err:          errors.Join(errs...),
		})
	}

	log.FromContext(ctx).WithField("booking_id", bookingID).Info("Booking cancelled")

	o.publish(undoCtx, event.BookingCancelled{
		Header:       event.NewHeader("cancel-" + bookingID),
		BookingID:    bookingID,
		ClassID:      classID,
		TicketUnitID: ticketUnitID,
		Reason:       reason,
	})

	return CancelResult{Status: CancelCancelled}, nil
}

// RecordAttendance marks a confirmed booking attended or no_show. A no_show
// frees its capacity slot; the ticket stays consumed.
func (o *Orchestrator) RecordAttendance(ctx context.Context, bookingID string, status entity.BookingStatus) (entity.Booking, error) {
	if status != entity.BookingAttended && status != entity.BookingNoShow {
		return entity.Booking{}, ErrInvalidAttendance
	}

	b, err := o.bookings.SetAttendance(ctx, bookingID, status)
	if err != nil {
		return entity.Booking{}, fmt.Errorf("setting attendance: %w", err)
	}

	if status == entity.BookingNoShow {
		undoCtx := context.WithoutCancel(ctx)
		if err := o.classes.Release(undoCtx, b.ClassID); err != nil {
			return b, o.compensationFailed(undoCtx, &CompensationError{
				Operation:    "attendance",
				State:        StateCommitted,
				ChildID:      b.ChildID,
				ClassID:      b.ClassID,
				BookingID:    b.BookingID,
				TicketUnitID: b.TicketUnitID,
				Resources:    []string{ResourceClassCapacity},
				Err:          fmt.Errorf("releasing capacity: %w", err),
			})
		}
	}

	return b, nil
}
