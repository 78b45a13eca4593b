package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
	"github.com/pablofelipe01/rodapolo-sub000/event"
	"github.com/sirupsen/logrus"
)

// State of a single booking attempt.
type State string

const (
	StateValidating       State = "Validating"
	StateTicketReserved   State = "TicketReserved"
	StateCapacityReserved State = "CapacityReserved"
	StateCommitted        State = "Committed"
	StateAborted          State = "Aborted"
)

type Ledger interface {
	AvailableCount(ctx context.Context, guardianID string) (int, error)
	ConsumeOne(ctx context.Context, guardianID string) (string, error)
	Release(ctx context.Context, ticketUnitID string) error
}

type CapacityTracker interface {
	Get(ctx context.Context, classID string) (entity.SchedClass, error)
	TryReserve(ctx context.Context, classID string) (bool, error)
	Release(ctx context.Context, classID string) error
}

type BookingStore interface {
	HasActiveBooking(ctx context.Context, childID, classID string) (bool, error)
	Create(ctx context.Context, childID, classID, ticketUnitID string) (string, error)
	Cancel(ctx context.Context, bookingID, reason string) (string, string, error)
	SetAttendance(ctx context.Context, bookingID string, status entity.BookingStatus) (entity.Booking, error)
}

type ChildRepo interface {
	Get(ctx context.Context, childID string) (entity.Child, error)
}

type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// Orchestrator books children into classes. It holds no lock of its own; each
// step is a single atomic storage operation and failures are undone by
// compensating operations in reverse order.
type Orchestrator struct {
	ledger    Ledger
	classes   CapacityTracker
	bookings  BookingStore
	children  ChildRepo
	publisher Publisher
}

// NewOrchestrator builds an Orchestrator. publisher may be nil.
func NewOrchestrator(
	ledger Ledger,
	classes CapacityTracker,
	bookings BookingStore,
	children ChildRepo,
	publisher Publisher,
) *Orchestrator {
	return &Orchestrator{
		ledger:    ledger,
		classes:   classes,
		bookings:  bookings,
		children:  children,
		publisher: publisher,
	}
}

func (o *Orchestrator) AvailableTickets(ctx context.Context, guardianID string) (int, error) {
	return o.ledger.AvailableCount(ctx, guardianID)
}

// Book reserves a ticket, then a capacity slot, then inserts the booking. A
// typed *Error is returned for expected failures; a *CompensationError when a
// reserved resource could not be given back.
func (o *Orchestrator) Book(ctx context.Context, childID, classID string) (string, error) {
	a := &attempt{
		o:       o,
		logger:  log.FromContext(ctx).WithField("child_id", childID).WithField("class_id", classID),
		state:   StateValidating,
		childID: childID,
		classID: classID,
	}

	child, _, err := o.validate(ctx, childID, classID)
	if err != nil {
		a.moveTo(StateAborted)
		return "", err
	}

	active, err := o.bookings.HasActiveBooking(ctx, childID, classID)
	if err != nil {
		a.moveTo(StateAborted)
		return "", fmt.Errorf("checking active booking: %w", err)
	}
	if active {
		a.moveTo(StateAborted)
		return "", fail(ReasonAlreadyBooked)
	}

	ticketUnitID, err := o.ledger.ConsumeOne(ctx, child.GuardianID)
	if errors.Is(err, entity.ErrNoTicketsAvailable) {
		a.moveTo(StateAborted)
		return "", fail(ReasonNoTicketsAvailable)
	}
	if err != nil {
		a.moveTo(StateAborted)
		return "", fmt.Errorf("consuming ticket: %w", err)
	}
	a.ticketUnitID = ticketUnitID
	a.moveTo(StateTicketReserved)

	// Compensation must run even if the caller gives up on the request.
	undoCtx := context.WithoutCancel(ctx)

	reserved, err := o.classes.TryReserve(ctx, classID)
	if err != nil {
		return "", a.abort(undoCtx, fmt.Errorf("reserving capacity: %w", err))
	}
	if !reserved {
		return "", a.abort(undoCtx, fail(ReasonClassFull))
	}
	a.moveTo(StateCapacityReserved)

	bookingID, err := o.bookings.Create(ctx, childID, classID, ticketUnitID)
	if errors.Is(err, entity.ErrDuplicateBooking) {
		return "", a.abort(undoCtx, fail(ReasonAlreadyBooked))
	}
	if err != nil {
		return "", a.abort(undoCtx, fmt.Errorf("creating booking: %w", err))
	}
	a.logger = a.logger.WithField("booking_id", bookingID)
	a.moveTo(StateCommitted)

	a.logger.Info("Booking committed")

	o.publish(undoCtx, event.BookingConfirmed{
		Header:       event.NewHeader(bookingID),
		BookingID:    bookingID,
		ChildID:      childID,
		GuardianID:   child.GuardianID,
		ClassID:      classID,
		TicketUnitID: ticketUnitID,
	})

	return bookingID, nil
}

func (o *Orchestrator) validate(ctx context.Context, childID, classID string) (entity.Child, entity.SchedClass, error) {
	child, err := o.children.Get(ctx, childID)
	if err != nil {
		return entity.Child{}, entity.SchedClass{}, fmt.Errorf("getting child: %w", err)
	}
	class, err := o.classes.Get(ctx, classID)
	if err != nil {
		return entity.Child{}, entity.SchedClass{}, fmt.Errorf("getting class: %w", err)
	}

	switch {
	case !child.Active:
		return child, class, fail(ReasonInactiveChild)
	case !class.Level.Accepts(child.Level):
		return child, class, fail(ReasonIneligibleLevel)
	case !class.Status.Bookable():
		return child, class, fail(ReasonClassNotBookable)
	}

	return child, class, nil
}

type attempt struct {
	o            *Orchestrator
	logger       *logrus.Entry
	state        State
	childID      string
	classID      string
	ticketUnitID string
}

func (a *attempt) moveTo(state State) {
	a.logger.WithField("from", a.state).WithField("to", state).Debug("Booking state changed")
	a.state = state
}

// abort undoes what the attempt reserved, capacity first, and returns cause
// unless an undo step failed.
func (a *attempt) abort(ctx context.Context, cause error) error {
	var (
		leaked []string
		errs   []error
	)

	if a.state == StateCapacityReserved {
		if err := a.o.classes.Release(ctx, a.classID); err != nil {
			leaked = append(leaked, ResourceClassCapacity)
			errs = append(errs, fmt.Errorf("releasing capacity: %w", err))
		}
	}
	if err := a.o.ledger.Release(ctx, a.ticketUnitID); err != nil {
		leaked = append(leaked, ResourceTicketUnit)
		errs = append(errs, fmt.Errorf("releasing ticket: %w", err))
	}

	failedIn := a.state
	a.moveTo(StateAborted)
	if len(errs) == 0 {
		return cause
	}

	return a.o.compensationFailed(ctx, &CompensationError{
		Operation:    "book",
		State:        failedIn,
		ChildID:      a.childID,
		ClassID:      a.classID,
		TicketUnitID: a.ticketUnitID,
		Resources:    leaked,
		Err:          errors.Join(append([]error{cause}, errs...)...),
	})
}

func (o *Orchestrator) compensationFailed(ctx context.Context, cerr *CompensationError) error {
	log.FromContext(ctx).
		WithError(cerr.Err).
		WithField("operation", cerr.Operation).
		WithField("state", cerr.State).
		WithField("child_id", cerr.ChildID).
		WithField("class_id", cerr.ClassID).
		WithField("booking_id", cerr.BookingID).
		WithField("ticket_unit_id", cerr.TicketUnitID).
		WithField("resources", cerr.Resources).
		Error("Reservation resources leaked, reconciliation required")

	for _, resource := range cerr.Resources {
		o.publish(ctx, event.ReservationCompensationFailed{
			Header:       event.NewHeader(watermill.NewUUID()),
			ChildID:      cerr.ChildID,
			ClassID:      cerr.ClassID,
			TicketUnitID: cerr.TicketUnitID,
			State:        string(cerr.State),
			Resource:     resource,
			Error:        cerr.Err.Error(),
		})
	}

	return cerr
}

func (o *Orchestrator) publish(ctx context.Context, e any) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, e); err != nil {
		log.FromContext(ctx).WithError(err).Errorf("Failed to publish %T", e)
	}
}
