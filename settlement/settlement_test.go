package settlement_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pablofelipe01/rodapolo-sub000/event"
	"github.com/pablofelipe01/rodapolo-sub000/memory"
	"github.com/pablofelipe01/rodapolo-sub000/settlement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func paymentCompleted(guardianID, key string, count int) *event.PaymentCompleted {
	return &event.PaymentCompleted{
		Header:      event.NewHeader(key),
		GuardianID:  guardianID,
		TicketCount: count,
		Expiry:      time.Now().Add(30 * 24 * time.Hour),
		AmountPaid:  decimal.RequireFromString("120.00"),
		Currency:    "EUR",
	}
}

func TestHandler_Settle_is_idempotent(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	h := settlement.NewHandler(ledger, time.Hour)
	guardianID := uuid.NewString()
	e := paymentCompleted(guardianID, "cs_test_a1", 4)

	require.NoError(t, h.Settle(ctx, e))
	require.NoError(t, h.Settle(ctx, e))

	assert.Equal(t, 1, ledger.Batches(guardianID))
	n, err := ledger.AvailableCount(ctx, guardianID)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestHandler_Settle_concurrent_redelivery(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	h := settlement.NewHandler(ledger, time.Hour)
	guardianID := uuid.NewString()

	g := errgroup.Group{}
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			// Each redelivery carries a new header id but the same payment key.
			return h.Settle(ctx, paymentCompleted(guardianID, "cs_test_a2", 3))
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, ledger.Batches(guardianID))
}

func TestHandler_Settle_default_expiry(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	h := settlement.NewHandler(ledger, time.Hour)
	guardianID := uuid.NewString()
	e := paymentCompleted(guardianID, "cs_test_a3", 2)
	e.Expiry = time.Time{}

	require.NoError(t, h.Settle(ctx, e))

	n, err := ledger.AvailableCount(ctx, guardianID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestHandler_Settle_rejects_invalid_events(t *testing.T) {
	ctx := context.Background()
	h := settlement.NewHandler(memory.NewLedger(), time.Hour)

	testCases := []struct {
		name  string
		event *event.PaymentCompleted
	}{
		{name: "nil", event: nil},
		{name: "no guardian", event: paymentCompleted("", "k", 1)},
		{name: "no key", event: paymentCompleted("g", "", 1)},
		{name: "zero tickets", event: paymentCompleted("g", "k", 0)},
		{name: "negative tickets", event: paymentCompleted("g", "k", -2)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, h.Settle(ctx, tc.event), settlement.ErrInvalidSettlement)
		})
	}
}
