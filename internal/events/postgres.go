package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stkyrillos/parish-api/libs/db"
)

// PostgresRepository is the durable schedule store.
type PostgresRepository struct {
	pool *db.Pool
}

func NewPostgresRepository(pool *db.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schedule_events (
			id UUID PRIMARY KEY,
			day_of_week INT NOT NULL,
			event_time TEXT NOT NULL,
			sort_order INT NOT NULL,
			duration_minutes INT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS schedule_events_order_idx
			ON schedule_events (day_of_week, sort_order);
	`)
	return err
}

const eventColumns = `id, day_of_week, event_time, sort_order, duration_minutes, title, description, location, created_at, updated_at`

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(
		&e.ID, &e.DayOfWeek, &e.Time, &e.SortOrder, &e.DurationMinutes,
		&e.Title, &e.Description, &e.Location, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *PostgresRepository) List(ctx context.Context) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM schedule_events
		ORDER BY day_of_week, sort_order, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, e Event) (Event, error) {
	e, err := Normalize(e)
	if err != nil {
		return Event{}, err
	}
	return scanEvent(r.pool.QueryRow(ctx, `
		INSERT INTO schedule_events
			(id, day_of_week, event_time, sort_order, duration_minutes, title, description, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+eventColumns+`
	`, uuid.NewString(), e.DayOfWeek, e.Time, e.SortOrder, e.DurationMinutes,
		e.Title, e.Description, e.Location))
}

func (r *PostgresRepository) Update(ctx context.Context, id string, e Event) (Event, error) {
	e, err := Normalize(e)
	if err != nil {
		return Event{}, err
	}
	updated, err := scanEvent(r.pool.QueryRow(ctx, `
		UPDATE schedule_events
		SET day_of_week = $2, event_time = $3, sort_order = $4,
			duration_minutes = $5, title = $6, description = $7, location = $8,
			updated_at = now()
		WHERE id = $1
		RETURNING `+eventColumns+`
	`, id, e.DayOfWeek, e.Time, e.SortOrder, e.DurationMinutes,
		e.Title, e.Description, e.Location))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return updated, err
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedule_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
