package event

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/shopspring/decimal"
)

type Header struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewHeader(idempotencyKey string) Header {
	return Header{
		ID:             watermill.NewUUID(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

// PaymentCompleted is emitted once a payment has been verified with the
// payment processor. IdempotencyKey identifies the payment, not the delivery.
type PaymentCompleted struct {
	Header      Header          `json:"header"`
	GuardianID  string          `json:"guardian_id"`
	TicketCount int             `json:"ticket_count"`
	Expiry      time.Time       `json:"expiry"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Currency    string          `json:"currency"`
}

type TicketBatchMaterialized struct {
	Header      Header          `json:"header"`
	BatchID     string          `json:"batch_id"`
	GuardianID  string          `json:"guardian_id"`
	TicketCount int             `json:"ticket_count"`
	ExpiresAt   time.Time       `json:"expires_at"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Currency    string          `json:"currency"`
}

type BookingConfirmed struct {
	Header       Header `json:"header"`
	BookingID    string `json:"booking_id"`
	ChildID      string `json:"child_id"`
	GuardianID   string `json:"guardian_id"`
	ClassID      string `json:"class_id"`
	TicketUnitID string `json:"ticket_unit_id"`
}

type BookingCancelled struct {
	Header       Header `json:"header"`
	BookingID    string `json:"booking_id"`
	ClassID      string `json:"class_id"`
	TicketUnitID string `json:"ticket_unit_id"`
	Reason       string `json:"reason"`
}

// ReservationCompensationFailed reports a ticket or capacity slot that was
// reserved without a matching booking and could not be given back.
type ReservationCompensationFailed struct {
	Header       Header `json:"header"`
	ChildID      string `json:"child_id"`
	ClassID      string `json:"class_id"`
	TicketUnitID string `json:"ticket_unit_id"`
	State        string `json:"state"`
	Resource     string `json:"resource"`
	Error        string `json:"error"`
}
