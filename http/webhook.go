package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/pablofelipe01/rodapolo-sub000/event"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	maxWebhookBodyBytes = int64(65536)

	metadataGuardianID  = "guardian_id"
	metadataTicketCount = "ticket_count"
	metadataExpiresAt   = "tickets_expire_at"
)

// StripeWebhook verifies a Stripe event and turns a paid checkout session
// into a PaymentCompleted event. The checkout session id is the idempotency
// key, so Stripe's redeliveries settle at most once.
func (h handler) StripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		return &echo.HTTPError{
			Code:     http.StatusServiceUnavailable,
			Message:  "failed to read request",
			Internal: fmt.Errorf("reading webhook body: %w", err),
		}
	}

	stripeEvent, err := webhook.ConstructEventWithOptions(
		payload,
		c.Request().Header.Get("Stripe-Signature"),
		h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return &echo.HTTPError{
			Code:     http.StatusBadRequest,
			Message:  "invalid signature",
			Internal: fmt.Errorf("verifying webhook signature: %w", err),
		}
	}

	logger := log.FromContext(c.Request().Context()).WithField("stripe_event", stripeEvent.ID)

	if stripeEvent.Type != "checkout.session.completed" {
		logger.WithField("type", stripeEvent.Type).Debug("Ignoring Stripe event")
		return c.NoContent(http.StatusOK)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(stripeEvent.Data.Raw, &session); err != nil {
		return &echo.HTTPError{
			Code:     http.StatusBadRequest,
			Message:  "invalid checkout session",
			Internal: fmt.Errorf("parsing checkout session: %w", err),
		}
	}

	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		logger.WithField("payment_status", session.PaymentStatus).Info("Checkout session not paid yet")
		return c.NoContent(http.StatusOK)
	}

	e, err := paymentCompleted(session)
	if err != nil {
		return &echo.HTTPError{
			Code:     http.StatusUnprocessableEntity,
			Message:  err.Error(),
			Internal: err,
		}
	}

	if err := h.publisher.Publish(c.Request().Context(), e); err != nil {
		return &echo.HTTPError{
			Code:     http.StatusInternalServerError,
			Message:  http.StatusText(http.StatusInternalServerError),
			Internal: fmt.Errorf("publishing payment completed: %w", err),
		}
	}

	return c.NoContent(http.StatusOK)
}

func paymentCompleted(session stripe.CheckoutSession) (event.PaymentCompleted, error) {
	guardianID := session.Metadata[metadataGuardianID]
	if guardianID == "" {
		return event.PaymentCompleted{}, fmt.Errorf("checkout session %s has no %s", session.ID, metadataGuardianID)
	}

	count, err := strconv.Atoi(session.Metadata[metadataTicketCount])
	if err != nil || count <= 0 {
		return event.PaymentCompleted{}, fmt.Errorf("checkout session %s has invalid %s", session.ID, metadataTicketCount)
	}

	var expiry time.Time
	if raw := session.Metadata[metadataExpiresAt]; raw != "" {
		expiry, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return event.PaymentCompleted{}, fmt.Errorf("checkout session %s has invalid %s: %w", session.ID, metadataExpiresAt, err)
		}
	}

	return event.PaymentCompleted{
		Header:      event.NewHeader(session.ID),
		GuardianID:  guardianID,
		TicketCount: count,
		Expiry:      expiry,
		AmountPaid:  decimal.New(session.AmountTotal, -2),
		Currency:    strings.ToUpper(string(session.Currency)),
	}, nil
}
