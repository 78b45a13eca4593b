package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
)

func CreateChildrenTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS children (
		child_id UUID PRIMARY KEY,
		guardian_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL,
		level VARCHAR(16) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		handicap NUMERIC(5, 2) NOT NULL DEFAULT 0
	);`)
	return err
}

type ChildRepo struct {
	db *sqlx.DB
}

func NewChildRepo(db *sqlx.DB) ChildRepo {
	return ChildRepo{
		db: db,
	}
}

func (r ChildRepo) Add(ctx context.Context, child entity.Child) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO children
		(child_id, guardian_id, name, level, active, handicap)
		VALUES (:child_id, :guardian_id, :name, :level, :active, :handicap);`, child)
	return err
}

func (r ChildRepo) Get(ctx context.Context, childID string) (entity.Child, error) {
	var child entity.Child
	err := r.db.GetContext(ctx, &child, `SELECT child_id, guardian_id, name, level, active, handicap
		FROM children WHERE child_id = $1`, childID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Child{}, entity.ErrChildNotFound
	}
	if err != nil {
		return entity.Child{}, fmt.Errorf("getting child: %w", err)
	}

	return child, nil
}

func (r ChildRepo) Deactivate(ctx context.Context, childID string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE children SET active = FALSE WHERE child_id = $1", childID)
	if err != nil {
		return fmt.Errorf("executing update query: %w", err)
	}

	return expectOneRow(res, entity.ErrChildNotFound)
}
