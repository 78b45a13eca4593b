package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func InitialiseDB(ctx context.Context, db *sqlx.DB) error {
	if err := CreateChildrenTable(ctx, db); err != nil {
		return fmt.Errorf("creating children table: %w", err)
	}

	if err := CreateClassesTable(ctx, db); err != nil {
		return fmt.Errorf("creating classes table: %w", err)
	}

	if err := CreateTicketTables(ctx, db); err != nil {
		return fmt.Errorf("creating ticket tables: %w", err)
	}

	if err := CreateBookingsTable(ctx, db); err != nil {
		return fmt.Errorf("creating bookings table: %w", err)
	}

	return nil
}

// pq error code for unique_violation.
const uniqueViolation = "23505"
