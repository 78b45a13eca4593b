package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Level string

const (
	LevelAlpha Level = "alpha"
	LevelBeta  Level = "beta"
	LevelMixed Level = "mixed"
)

func (l Level) Valid() bool {
	switch l {
	case LevelAlpha, LevelBeta, LevelMixed:
		return true
	}
	return false
}

// Accepts reports whether a class at level l takes a child at level child.
func (l Level) Accepts(child Level) bool {
	return l == LevelMixed || l == child
}

type ClassStatus string

const (
	ClassScheduled ClassStatus = "scheduled"
	ClassConfirmed ClassStatus = "confirmed"
	ClassCancelled ClassStatus = "cancelled"
	ClassCompleted ClassStatus = "completed"
)

func (s ClassStatus) Bookable() bool {
	return s == ClassScheduled || s == ClassConfirmed
}

func (s ClassStatus) Valid() bool {
	switch s {
	case ClassScheduled, ClassConfirmed, ClassCancelled, ClassCompleted:
		return true
	}
	return false
}

type TicketStatus string

const (
	TicketAvailable TicketStatus = "available"
	TicketConsumed  TicketStatus = "consumed"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingAttended  BookingStatus = "attended"
	BookingNoShow    BookingStatus = "no_show"
)

// Active bookings hold a ticket and a capacity slot.
func (s BookingStatus) Active() bool {
	return s == BookingConfirmed || s == BookingAttended
}

type Child struct {
	ChildID    string  `json:"child_id" db:"child_id"`
	GuardianID string  `json:"guardian_id" db:"guardian_id"`
	Name       string  `json:"name" db:"name"`
	Level      Level   `json:"level" db:"level"`
	Active     bool    `json:"active" db:"active"`
	Handicap   float64 `json:"handicap" db:"handicap"`
}

type SchedClass struct {
	ClassID         string      `json:"class_id" db:"class_id"`
	Date            time.Time   `json:"date" db:"class_date"`
	StartTime       string      `json:"start_time" db:"start_time"`
	EndTime         string      `json:"end_time" db:"end_time"`
	Level           Level       `json:"level" db:"level"`
	Capacity        int         `json:"capacity" db:"capacity"`
	CurrentBookings int         `json:"current_bookings" db:"current_bookings"`
	Status          ClassStatus `json:"status" db:"status"`
}

type TicketBatch struct {
	BatchID        string          `json:"batch_id" db:"batch_id"`
	GuardianID     string          `json:"guardian_id" db:"guardian_id"`
	TotalTickets   int             `json:"total_tickets" db:"total_tickets"`
	AmountPaid     decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	Currency       string          `json:"currency" db:"currency"`
	IdempotencyKey string          `json:"-" db:"idempotency_key"`
	PurchasedAt    time.Time       `json:"purchased_at" db:"purchased_at"`
	ExpiresAt      time.Time       `json:"expires_at" db:"expires_at"`
}

type TicketUnit struct {
	UnitID     string       `json:"unit_id" db:"unit_id"`
	BatchID    string       `json:"batch_id" db:"batch_id"`
	GuardianID string       `json:"guardian_id" db:"guardian_id"`
	Status     TicketStatus `json:"status" db:"status"`
	ConsumedAt *time.Time   `json:"consumed_at,omitempty" db:"consumed_at"`
}

type Booking struct {
	BookingID    string        `json:"booking_id" db:"booking_id"`
	ChildID      string        `json:"child_id" db:"child_id"`
	ClassID      string        `json:"class_id" db:"class_id"`
	TicketUnitID string        `json:"ticket_unit_id" db:"ticket_unit_id"`
	Status       BookingStatus `json:"status" db:"status"`
	BookedAt     time.Time     `json:"booked_at" db:"booked_at"`
	CancelledAt  *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancelReason *string       `json:"cancel_reason,omitempty" db:"cancel_reason"`
	AttendedAt   *time.Time    `json:"attended_at,omitempty" db:"attended_at"`
}

type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}
