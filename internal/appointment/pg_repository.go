package appointment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is satisfied by *pgxpool.Pool and pgx.Tx, so integration tests can run
// each case inside a transaction that is rolled back afterwards.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db db
}

func NewPgRepository(db db) *PgRepository {
	return &PgRepository{db: db}
}

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	if err := row.Scan(&a.Date, &a.Time); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

func (r *PgRepository) List(ctx context.Context) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT slot_date, slot_time
		FROM appointments
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	result := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return result, nil
}

func (r *PgRepository) Exists(ctx context.Context, a Appointment) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE slot_date = $1 AND slot_time = $2
		)
	`, a.Date, a.Time).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check appointment: %w", err)
	}
	return exists, nil
}

func (r *PgRepository) Insert(ctx context.Context, a Appointment) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO appointments (slot_date, slot_time, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (slot_date, slot_time) DO NOTHING
	`, a.Date, a.Time)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUnavailable
	}
	return nil
}

func (r *PgRepository) Reset(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `TRUNCATE appointments RESTART IDENTITY`); err != nil {
		return fmt.Errorf("reset appointments: %w", err)
	}
	return nil
}
