package message

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
	"github.com/pablofelipe01/rodapolo-sub000/event"
	"github.com/pablofelipe01/rodapolo-sub000/settlement"
)

const (
	sheetClassBookings    = "class-bookings"
	sheetCancelled        = "class-bookings-cancelled"
	sheetToReconcile      = "reservations-to-reconcile"
	defaultReceiptCurrency = "EUR"
)

type Settler interface {
	Settle(ctx context.Context, e *event.PaymentCompleted) error
}

type ReceiptIssuer interface {
	IssueReceipt(ctx context.Context, purchaseID string, price entity.Money) error
}

type SpreadsheetAppender interface {
	AppendRow(ctx context.Context, spreadsheetName string, row []string) error
}

func handleSettlePayment(s Settler) func(context.Context, *event.PaymentCompleted) error {
	return func(ctx context.Context, e *event.PaymentCompleted) error {
		err := s.Settle(ctx, e)
		if errors.Is(err, settlement.ErrInvalidSettlement) {
			log.FromContext(ctx).WithError(err).Warn("Dropping payment that cannot be settled")
			return nil
		}

		return err
	}
}

func handleIssueReceipt(r ReceiptIssuer) func(context.Context, *event.TicketBatchMaterialized) error {
	return func(ctx context.Context, e *event.TicketBatchMaterialized) error {
		currency := e.Currency
		if currency == "" {
			currency = defaultReceiptCurrency
		}

		price := entity.Money{
			Amount:   e.AmountPaid.StringFixed(2),
			Currency: currency,
		}

		if err := r.IssueReceipt(ctx, e.BatchID, price); err != nil {
			return fmt.Errorf("issuing receipt: %w", err)
		}

		return nil
	}
}

func handleAppendToTrackerConfirmed(s SpreadsheetAppender) func(context.Context, *event.BookingConfirmed) error {
	return func(ctx context.Context, e *event.BookingConfirmed) error {
		row := []string{e.BookingID, e.ClassID, e.ChildID, e.GuardianID, e.TicketUnitID}
		if err := s.AppendRow(ctx, sheetClassBookings, row); err != nil {
			return fmt.Errorf("failed to append row to tracker: %w", err)
		}

		return nil
	}
}

func handleAppendToTrackerCancelled(s SpreadsheetAppender) func(context.Context, *event.BookingCancelled) error {
	return func(ctx context.Context, e *event.BookingCancelled) error {
		row := []string{e.BookingID, e.ClassID, e.TicketUnitID, e.Reason}
		if err := s.AppendRow(ctx, sheetCancelled, row); err != nil {
			return fmt.Errorf("failed to append row to tracker: %w", err)
		}

		return nil
	}
}

func handleAppendToReconciliation(s SpreadsheetAppender) func(context.Context, *event.ReservationCompensationFailed) error {
	return func(ctx context.Context, e *event.ReservationCompensationFailed) error {
		row := []string{e.Resource, e.ClassID, e.TicketUnitID, e.ChildID, e.State, e.Error}
		if err := s.AppendRow(ctx, sheetToReconcile, row); err != nil {
			return fmt.Errorf("failed to append row to reconciliation sheet: %w", err)
		}

		return nil
	}
}
