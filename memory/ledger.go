// Package memory keeps the booking storage in process. Every operation holds
// its own lock for its whole duration, so each behaves like a single
// conditional statement against the database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
)

type Ledger struct {
	mu          sync.Mutex
	batches     map[string]entity.TicketBatch
	units       map[string]*entity.TicketUnit
	idempotency map[string]string
	now         func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{
		batches:     make(map[string]entity.TicketBatch),
		units:       make(map[string]*entity.TicketUnit),
		idempotency: make(map[string]string),
		now:         time.Now,
	}
}

func (l *Ledger) AvailableCount(_ context.Context, guardianID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.availableLocked(guardianID)), nil
}

func (l *Ledger) ConsumeOne(_ context.Context, guardianID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	available := l.availableLocked(guardianID)
	if len(available) == 0 {
		return "", entity.ErrNoTicketsAvailable
	}

	u := available[0]
	now := l.now()
	u.Status = entity.TicketConsumed
	u.ConsumedAt = &now

	return u.UnitID, nil
}

func (l *Ledger) Release(_ context.Context, ticketUnitID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.units[ticketUnitID]
	if !ok {
		return entity.ErrTicketNotFound
	}
	u.Status = entity.TicketAvailable
	u.ConsumedAt = nil

	return nil
}

func (l *Ledger) Materialize(_ context.Context, batch entity.TicketBatch) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.idempotency[batch.IdempotencyKey]; ok {
		return existing, false, nil
	}

	if batch.BatchID == "" {
		batch.BatchID = uuid.NewString()
	}
	if batch.PurchasedAt.IsZero() {
		batch.PurchasedAt = l.now()
	}
	l.batches[batch.BatchID] = batch
	l.idempotency[batch.IdempotencyKey] = batch.BatchID

	for i := 0; i < batch.TotalTickets; i++ {
		id := uuid.NewString()
		l.units[id] = &entity.TicketUnit{
			UnitID:     id,
			BatchID:    batch.BatchID,
			GuardianID: batch.GuardianID,
			Status:     entity.TicketAvailable,
		}
	}

	return batch.BatchID, true, nil
}

// Unit returns a copy of a ticket unit.
func (l *Ledger) Unit(ticketUnitID string) (entity.TicketUnit, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.units[ticketUnitID]
	if !ok {
		return entity.TicketUnit{}, false
	}
	return *u, true
}

// Batches returns the number of batches created for a guardian.
func (l *Ledger) Batches(guardianID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, b := range l.batches {
		if b.GuardianID == guardianID {
			n++
		}
	}
	return n
}

// availableLocked lists available units of non-expired batches, oldest
// purchase first.
func (l *Ledger) availableLocked(guardianID string) []*entity.TicketUnit {
	now := l.now()

	var units []*entity.TicketUnit
	for _, u := range l.units {
		if u.GuardianID != guardianID || u.Status != entity.TicketAvailable {
			continue
		}
		if !l.batches[u.BatchID].ExpiresAt.After(now) {
			continue
		}
		units = append(units, u)
	}

	sort.Slice(units, func(i, j int) bool {
		bi, bj := l.batches[units[i].BatchID], l.batches[units[j].BatchID]
		if !bi.PurchasedAt.Equal(bj.PurchasedAt) {
			return bi.PurchasedAt.Before(bj.PurchasedAt)
		}
		return units[i].UnitID < units[j].UnitID
	})

	return units
}
