package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
)

type Bookings struct {
	mu       sync.Mutex
	bookings map[string]entity.Booking
	now      func() time.Time
}

func NewBookings() *Bookings {
	return &Bookings{
		bookings: make(map[string]entity.Booking),
		now:      time.Now,
	}
}

func (s *Bookings) HasActiveBooking(_ context.Context, childID, classID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hasActiveLocked(childID, classID), nil
}

func (s *Bookings) Create(_ context.Context, childID, classID, ticketUnitID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasActiveLocked(childID, classID) {
		return "", entity.ErrDuplicateBooking
	}

	b := entity.Booking{
		BookingID:    uuid.NewString(),
		ChildID:      childID,
		ClassID:      classID,
		TicketUnitID: ticketUnitID,
		Status:       entity.BookingConfirmed,
		BookedAt:     s.now(),
	}
	s.bookings[b.BookingID] = b

	return b.BookingID, nil
}

func (s *Bookings) Cancel(_ context.Context, bookingID, reason string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return "", "", entity.ErrBookingNotFound
	}
	switch b.Status {
	case entity.BookingConfirmed:
	case entity.BookingCancelled:
		return "", "", entity.ErrAlreadyCancelled
	default:
		return "", "", entity.ErrBookingNotConfirmed
	}

	now := s.now()
	b.Status = entity.BookingCancelled
	b.CancelledAt = &now
	b.CancelReason = &reason
	s.bookings[bookingID] = b

	return b.TicketUnitID, b.ClassID, nil
}

func (s *Bookings) Get(_ context.Context, bookingID string) (entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return entity.Booking{}, entity.ErrBookingNotFound
	}
	return b, nil
}

func (s *Bookings) ListByClass(_ context.Context, classID string) ([]entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings := []entity.Booking{}
	for _, b := range s.bookings {
		if b.ClassID == classID {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].BookedAt.Before(bookings[j].BookedAt)
	})

	return bookings, nil
}

func (s *Bookings) SetAttendance(_ context.Context, bookingID string, status entity.BookingStatus) (entity.Booking, error) {
	if status != entity.BookingAttended && status != entity.BookingNoShow {
		return entity.Booking{}, fmt.Errorf("invalid attendance status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return entity.Booking{}, entity.ErrBookingNotFound
	}
	if b.Status != entity.BookingConfirmed {
		return entity.Booking{}, entity.ErrBookingNotConfirmed
	}

	now := s.now()
	b.Status = status
	b.AttendedAt = &now
	s.bookings[bookingID] = b

	return b, nil
}

func (s *Bookings) hasActiveLocked(childID, classID string) bool {
	for _, b := range s.bookings {
		if b.ChildID == childID && b.ClassID == classID && b.Status.Active() {
			return true
		}
	}
	return false
}
