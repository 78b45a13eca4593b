package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
	"github.com/pablofelipe01/rodapolo-sub000/event"
	"github.com/pablofelipe01/rodapolo-sub000/message"
)

func CreateTicketTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS ticket_batches (
		batch_id UUID PRIMARY KEY,
		guardian_id UUID NOT NULL,
		total_tickets INTEGER NOT NULL CHECK (total_tickets > 0),
		amount_paid NUMERIC(10, 2) NOT NULL DEFAULT 0,
		currency CHAR(3) NOT NULL DEFAULT 'EUR',
		idempotency_key VARCHAR(255) NOT NULL UNIQUE,
		purchased_at TIMESTAMP WITH TIME ZONE NOT NULL,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL
	);
	CREATE TABLE IF NOT EXISTS ticket_units (
		unit_id UUID PRIMARY KEY,
		batch_id UUID NOT NULL REFERENCES ticket_batches (batch_id),
		guardian_id UUID NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'available',
		consumed_at TIMESTAMP WITH TIME ZONE
	);
	CREATE INDEX IF NOT EXISTS ticket_units_guardian_status ON ticket_units (guardian_id, status);`)
	return err
}

// TicketLedger tracks purchased batches and their consumable units.
type TicketLedger struct {
	db     *sqlx.DB
	logger watermill.LoggerAdapter
	now    func() time.Time
}

func NewTicketLedger(db *sqlx.DB, logger watermill.LoggerAdapter) TicketLedger {
	return TicketLedger{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (l TicketLedger) AvailableCount(ctx context.Context, guardianID string) (int, error) {
	var n int
	err := l.db.GetContext(ctx, &n, `SELECT count(*)
		FROM ticket_units u
		JOIN ticket_batches b ON b.batch_id = u.batch_id
		WHERE u.guardian_id = $1 AND u.status = 'available' AND b.expires_at > $2`,
		guardianID, l.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("counting available tickets: %w", err)
	}

	return n, nil
}

// ConsumeOne takes the oldest available unit of a non-expired batch. Rows
// locked by a concurrent consumer are skipped rather than waited on, so two
// callers never receive the same unit.
func (l TicketLedger) ConsumeOne(ctx context.Context, guardianID string) (string, error) {
	now := l.now().UTC()

	var unitID string
	err := l.db.QueryRowContext(ctx, `UPDATE ticket_units
		SET status = 'consumed', consumed_at = $2
		WHERE status = 'available' AND unit_id = (
			SELECT u.unit_id
			FROM ticket_units u
			JOIN ticket_batches b ON b.batch_id = u.batch_id
			WHERE u.guardian_id = $1 AND u.status = 'available' AND b.expires_at > $2
			ORDER BY b.purchased_at, u.unit_id
			LIMIT 1
			FOR UPDATE OF u SKIP LOCKED
		)
		RETURNING unit_id`, guardianID, now).Scan(&unitID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", entity.ErrNoTicketsAvailable
	}
	if err != nil {
		return "", fmt.Errorf("consuming ticket: %w", err)
	}

	return unitID, nil
}

func (l TicketLedger) Release(ctx context.Context, ticketUnitID string) error {
	res, err := l.db.ExecContext(ctx, `UPDATE ticket_units
		SET status = 'available', consumed_at = NULL
		WHERE unit_id = $1`, ticketUnitID)
	if err != nil {
		return fmt.Errorf("releasing ticket: %w", err)
	}

	return expectOneRow(res, entity.ErrTicketNotFound)
}

// Materialize creates a batch of available units. A repeated idempotency key
// returns the batch created by the first call and created=false.
func (l TicketLedger) Materialize(ctx context.Context, batch entity.TicketBatch) (string, bool, error) {
	if batch.BatchID == "" {
		batch.BatchID = uuid.NewString()
	}
	if batch.PurchasedAt.IsZero() {
		batch.PurchasedAt = l.now().UTC()
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("beginning transaction: %w", err)
	}

	batchID, created, err := l.materialize(ctx, tx, batch)
	if err != nil {
		return "", false, errors.Join(err, tx.Rollback())
	}
	if !created {
		return batchID, false, tx.Rollback()
	}

	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("committing transaction: %w", err)
	}

	return batchID, true, nil
}

func (l TicketLedger) materialize(ctx context.Context, tx *sql.Tx, batch entity.TicketBatch) (string, bool, error) {
	var batchID string
	err := tx.QueryRowContext(ctx, `INSERT INTO ticket_batches
		(batch_id, guardian_id, total_tickets, amount_paid, currency, idempotency_key, purchased_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING batch_id`,
		batch.BatchID, batch.GuardianID, batch.TotalTickets, batch.AmountPaid, batch.Currency,
		batch.IdempotencyKey, batch.PurchasedAt, batch.ExpiresAt).Scan(&batchID)
	if errors.Is(err, sql.ErrNoRows) {
		err := tx.QueryRowContext(ctx, `SELECT batch_id FROM ticket_batches WHERE idempotency_key = $1`,
			batch.IdempotencyKey).Scan(&batchID)
		if err != nil {
			return "", false, fmt.Errorf("getting existing batch: %w", err)
		}
		return batchID, false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("inserting batch: %w", err)
	}

	query := `INSERT INTO ticket_units (unit_id, batch_id, guardian_id, status) VALUES `
	args := make([]any, 0, batch.TotalTickets*3)
	values := make([]string, 0, batch.TotalTickets)
	for i := 0; i < batch.TotalTickets; i++ {
		n := i * 3
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, 'available')", n+1, n+2, n+3))
		args = append(args, uuid.NewString(), batchID, batch.GuardianID)
	}
	if _, err := tx.ExecContext(ctx, query+strings.Join(values, ", "), args...); err != nil {
		return "", false, fmt.Errorf("inserting ticket units: %w", err)
	}

	e := event.TicketBatchMaterialized{
		Header:      event.NewHeader(batch.IdempotencyKey),
		BatchID:     batchID,
		GuardianID:  batch.GuardianID,
		TicketCount: batch.TotalTickets,
		ExpiresAt:   batch.ExpiresAt,
		AmountPaid:  batch.AmountPaid,
		Currency:    batch.Currency,
	}
	if err := message.PublishInTx(ctx, e, tx, l.logger); err != nil {
		return "", false, fmt.Errorf("publishing event in transaction: %w", err)
	}

	return batchID, true, nil
}
