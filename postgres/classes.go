package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
)

func CreateClassesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS classes (
		class_id UUID PRIMARY KEY,
		class_date DATE NOT NULL,
		start_time VARCHAR(5) NOT NULL,
		end_time VARCHAR(5) NOT NULL,
		level VARCHAR(16) NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		current_bookings INTEGER NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL DEFAULT 'scheduled',
		CHECK (current_bookings >= 0 AND current_bookings <= capacity)
	);`)
	return err
}

// ClassRepo is the class capacity tracker. Capacity is only ever changed by
// single conditional UPDATE statements.
type ClassRepo struct {
	db *sqlx.DB
}

func NewClassRepo(db *sqlx.DB) ClassRepo {
	return ClassRepo{
		db: db,
	}
}

func (r ClassRepo) Add(ctx context.Context, class entity.SchedClass) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO classes
		(class_id, class_date, start_time, end_time, level, capacity, current_bookings, status)
		VALUES (:class_id, :class_date, :start_time, :end_time, :level, :capacity, 0, :status);`, class)
	return err
}

func (r ClassRepo) Get(ctx context.Context, classID string) (entity.SchedClass, error) {
	var class entity.SchedClass
	err := r.db.GetContext(ctx, &class, `SELECT class_id, class_date, start_time, end_time, level,
		capacity, current_bookings, status
		FROM classes WHERE class_id = $1`, classID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.SchedClass{}, entity.ErrClassNotFound
	}
	if err != nil {
		return entity.SchedClass{}, fmt.Errorf("getting class: %w", err)
	}

	return class, nil
}

func (r ClassRepo) TryReserve(ctx context.Context, classID string) (bool, error) {
	var current int
	err := r.db.QueryRowContext(ctx, `UPDATE classes
		SET current_bookings = current_bookings + 1
		WHERE class_id = $1 AND current_bookings < capacity
		RETURNING current_bookings`, classID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reserving class capacity: %w", err)
	}

	return true, nil
}

func (r ClassRepo) Release(ctx context.Context, classID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE classes
		SET current_bookings = GREATEST(current_bookings - 1, 0)
		WHERE class_id = $1`, classID)
	if err != nil {
		return fmt.Errorf("releasing class capacity: %w", err)
	}

	return nil
}

func (r ClassRepo) SetStatus(ctx context.Context, classID string, status entity.ClassStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE classes SET status = $2 WHERE class_id = $1", classID, status)
	if err != nil {
		return fmt.Errorf("executing update query: %w", err)
	}

	return expectOneRow(res, entity.ErrClassNotFound)
}

func (r ClassRepo) SetCapacity(ctx context.Context, classID string, capacity int) error {
	// Cancelled and no-show bookings still lock the capacity.
	res, err := r.db.ExecContext(ctx, `UPDATE classes SET capacity = $2
		WHERE class_id = $1 AND current_bookings = 0
		AND NOT EXISTS (SELECT 1 FROM bookings WHERE bookings.class_id = $1)`, classID, capacity)
	if err != nil {
		return fmt.Errorf("executing update query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	if _, err := r.Get(ctx, classID); err != nil {
		return err
	}
	return entity.ErrCapacityLocked
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n != 1 {
		return notFound
	}

	return nil
}
