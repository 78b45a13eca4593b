package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
)

type ResultStatus string

const (
	StatusConfirmed ResultStatus = "confirmed"
	StatusFailed    ResultStatus = "failed"
)

// Category tells a failed booking caused by the request apart from one lost
// to another booking or to the system.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryContention Category = "contention"
	CategorySystem     Category = "system"
)

// Result of booking one child in a batch. Reason is set for expected
// failures, Error for anything else.
type Result struct {
	ChildID   string       `json:"child_id"`
	Status    ResultStatus `json:"status"`
	BookingID string       `json:"booking_id,omitempty"`
	Category  Category     `json:"category,omitempty"`
	Reason    Reason       `json:"reason,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// ErrBatchFailed is returned when no child in a batch could be processed
// because of system failures.
var ErrBatchFailed = errors.New("no booking in the batch could be processed")

// BookChildren books every child independently. Partial success is a normal
// outcome; an error is returned only when the class is unknown or every child
// hit a system failure.
func (o *Orchestrator) BookChildren(ctx context.Context, classID string, childIDs []string) ([]Result, error) {
	if _, err := o.classes.Get(ctx, classID); err != nil {
		return nil, fmt.Errorf("getting class: %w", err)
	}

	results := make([]Result, 0, len(childIDs))
	var systemErrs []error
	for _, childID := range childIDs {
		r := Result{ChildID: childID}

		bookingID, err := o.Book(ctx, childID, classID)
		if err == nil {
			r.Status = StatusConfirmed
			r.BookingID = bookingID
			results = append(results, r)
			continue
		}

		r.Status = StatusFailed
		reason, ok := ReasonOf(err)
		switch {
		case ok:
			r.Reason = reason
			r.Category = CategoryContention
			if reason.Validation() {
				r.Category = CategoryValidation
			}
		case errors.Is(err, entity.ErrChildNotFound):
			r.Error = err.Error()
			r.Category = CategoryValidation
			log.FromContext(ctx).WithField("child_id", childID).Info("Skipping unknown child")
		default:
			r.Error = err.Error()
			r.Category = CategorySystem
			systemErrs = append(systemErrs, err)
			log.FromContext(ctx).WithError(err).WithField("child_id", childID).Error("Booking failed")
		}
		results = append(results, r)
	}

	if len(childIDs) > 0 && len(systemErrs) == len(childIDs) {
		return results, errors.Join(append([]error{ErrBatchFailed}, systemErrs...)...)
	}

	return results, nil
}
