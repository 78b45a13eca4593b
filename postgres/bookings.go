package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
)

// The partial unique index is what rejects a second active booking for the
// same child and class when two requests race past HasActiveBooking.
func CreateBookingsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS bookings (
		booking_id UUID PRIMARY KEY,
		child_id UUID NOT NULL REFERENCES children (child_id),
		class_id UUID NOT NULL REFERENCES classes (class_id),
		ticket_unit_id UUID NOT NULL REFERENCES ticket_units (unit_id),
		status VARCHAR(16) NOT NULL DEFAULT 'confirmed',
		booked_at TIMESTAMP WITH TIME ZONE NOT NULL,
		cancelled_at TIMESTAMP WITH TIME ZONE,
		cancel_reason TEXT,
		attended_at TIMESTAMP WITH TIME ZONE
	);
	CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_child_class
		ON bookings (child_id, class_id)
		WHERE status IN ('confirmed', 'attended');
	CREATE INDEX IF NOT EXISTS bookings_class ON bookings (class_id);`)
	return err
}

type BookingRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewBookingRepo(db *sqlx.DB) BookingRepo {
	return BookingRepo{
		db:  db,
		now: time.Now,
	}
}

const bookingColumns = `booking_id, child_id, class_id, ticket_unit_id, status,
	booked_at, cancelled_at, cancel_reason, attended_at`

func (r BookingRepo) HasActiveBooking(ctx context.Context, childID, classID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE child_id = $1 AND class_id = $2 AND status IN ('confirmed', 'attended')
	)`, childID, classID)
	if err != nil {
		return false, fmt.Errorf("checking active booking: %w", err)
	}

	return exists, nil
}

func (r BookingRepo) Create(ctx context.Context, childID, classID, ticketUnitID string) (string, error) {
	bookingID := uuid.NewString()

	_, err := r.db.ExecContext(ctx, `INSERT INTO bookings
		(booking_id, child_id, class_id, ticket_unit_id, status, booked_at)
		VALUES ($1, $2, $3, $4, 'confirmed', $5)`,
		bookingID, childID, classID, ticketUnitID, r.now().UTC())
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return "", entity.ErrDuplicateBooking
	}
	if err != nil {
		return "", fmt.Errorf("inserting booking: %w", err)
	}

	return bookingID, nil
}

// Cancel moves a confirmed booking to cancelled and returns the resources it
// held. Only one of several concurrent cancels can match the status guard.
func (r BookingRepo) Cancel(ctx context.Context, bookingID, reason string) (string, string, error) {
	var ticketUnitID, classID string
	err := r.db.QueryRowContext(ctx, `UPDATE bookings
		SET status = 'cancelled', cancelled_at = $2, cancel_reason = $3
		WHERE booking_id = $1 AND status = 'confirmed'
		RETURNING ticket_unit_id, class_id`,
		bookingID, r.now().UTC(), reason).Scan(&ticketUnitID, &classID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", r.notCancellable(ctx, bookingID)
	}
	if err != nil {
		return "", "", fmt.Errorf("cancelling booking: %w", err)
	}

	return ticketUnitID, classID, nil
}

func (r BookingRepo) notCancellable(ctx context.Context, bookingID string) error {
	b, err := r.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status == entity.BookingCancelled {
		return entity.ErrAlreadyCancelled
	}

	return entity.ErrBookingNotConfirmed
}

func (r BookingRepo) Get(ctx context.Context, bookingID string) (entity.Booking, error) {
	var b entity.Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Booking{}, entity.ErrBookingNotFound
	}
	if err != nil {
		return entity.Booking{}, fmt.Errorf("getting booking: %w", err)
	}

	return b, nil
}

func (r BookingRepo) ListByClass(ctx context.Context, classID string) ([]entity.Booking, error) {
	bookings := []entity.Booking{}
	err := r.db.SelectContext(ctx, &bookings, `SELECT `+bookingColumns+`
		FROM bookings WHERE class_id = $1 ORDER BY booked_at`, classID)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}

	return bookings, nil
}

// SetAttendance records attended or no_show on a confirmed booking.
func (r BookingRepo) SetAttendance(ctx context.Context, bookingID string, status entity.BookingStatus) (entity.Booking, error) {
	if status != entity.BookingAttended && status != entity.BookingNoShow {
		return entity.Booking{}, fmt.Errorf("invalid attendance status %q", status)
	}

	var b entity.Booking
	err := r.db.GetContext(ctx, &b, `UPDATE bookings
		SET status = $2, attended_at = $3
		WHERE booking_id = $1 AND status = 'confirmed'
		RETURNING `+bookingColumns, bookingID, status, r.now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := r.Get(ctx, bookingID); err != nil {
			return entity.Booking{}, err
		}
		return entity.Booking{}, entity.ErrBookingNotConfirmed
	}
	if err != nil {
		return entity.Booking{}, fmt.Errorf("setting attendance: %w", err)
	}

	return b, nil
}
