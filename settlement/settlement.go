package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
	"github.com/pablofelipe01/rodapolo-sub000/event"
)

// ErrInvalidSettlement marks a payment event that can never be materialized.
// Retrying it is pointless.
var ErrInvalidSettlement = errors.New("invalid settlement")

type Ledger interface {
	Materialize(ctx context.Context, batch entity.TicketBatch) (string, bool, error)
}

// Handler turns verified payments into ticket batches, once per payment.
type Handler struct {
	ledger   Ledger
	validity time.Duration
	now      func() time.Time
}

// NewHandler returns a Handler. validity is used for payments that carry no
// expiry of their own.
func NewHandler(ledger Ledger, validity time.Duration) Handler {
	return Handler{
		ledger:   ledger,
		validity: validity,
		now:      time.Now,
	}
}

func (h Handler) Settle(ctx context.Context, e *event.PaymentCompleted) error {
	if err := validate(e); err != nil {
		return err
	}

	expiry := e.Expiry
	if expiry.IsZero() {
		expiry = h.now().Add(h.validity)
	}

	batchID, created, err := h.ledger.Materialize(ctx, entity.TicketBatch{
		GuardianID:     e.GuardianID,
		TotalTickets:   e.TicketCount,
		AmountPaid:     e.AmountPaid,
		Currency:       e.Currency,
		IdempotencyKey: e.Header.IdempotencyKey,
		ExpiresAt:      expiry.UTC(),
	})
	if err != nil {
		return fmt.Errorf("materializing tickets: %w", err)
	}

	logger := log.FromContext(ctx).
		WithField("batch_id", batchID).
		WithField("guardian_id", e.GuardianID).
		WithField("idempotency_key", e.Header.IdempotencyKey)
	if !created {
		logger.Info("Payment already settled, skipping")
		return nil
	}
	logger.WithField("tickets", e.TicketCount).Info("Tickets materialized")

	return nil
}

func validate(e *event.PaymentCompleted) error {
	switch {
	case e == nil:
		return fmt.Errorf("%w: missing event", ErrInvalidSettlement)
	case e.GuardianID == "":
		return fmt.Errorf("%w: missing guardian id", ErrInvalidSettlement)
	case e.Header.IdempotencyKey == "":
		return fmt.Errorf("%w: missing idempotency key", ErrInvalidSettlement)
	case e.TicketCount <= 0:
		return fmt.Errorf("%w: ticket count %d", ErrInvalidSettlement, e.TicketCount)
	case e.AmountPaid.IsNegative():
		return fmt.Errorf("%w: negative amount %s", ErrInvalidSettlement, e.AmountPaid)
	}
	return nil
}
