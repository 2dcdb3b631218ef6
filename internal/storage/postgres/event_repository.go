package postgres

import (
	"context"
	"errors"

	"github.com/cimillas/events-api/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, name, date, location, description, created_at`

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	const stmt = `
INSERT INTO events (id, name, date, location, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + eventColumns

	created, err := scanEvent(r.pool.QueryRow(ctx, stmt,
		uuid.NewString(), event.Name, event.Date, event.Location, event.Description, event.CreatedAt,
	))
	if err != nil {
		return domain.Event{}, wrapErr("create event", err)
	}
	return created, nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const query = `
SELECT ` + eventColumns + `
FROM events
ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("list events", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, wrapErr("scan event", err)
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, wrapErr("iterate events", rows.Err())
	}
	return events, nil
}

// UpdateEvent overwrites only the fields set in patch. It returns (nil, nil)
// when no row has the id.
func (r *EventRepository) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	const stmt = `
UPDATE events SET
	name        = COALESCE($2, name),
	date        = COALESCE($3, date),
	location    = COALESCE($4, location),
	description = COALESCE($5, description),
	created_at  = COALESCE($6, created_at)
WHERE id = $1
RETURNING ` + eventColumns

	event, err := scanEvent(r.pool.QueryRow(ctx, stmt,
		id, patch.Name, patch.Date, patch.Location, patch.Description, patch.CreatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("update event", err)
	}
	return &event, nil
}

func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return wrapErr("delete event", err)
	}
	return nil
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var event domain.Event
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Date,
		&event.Location,
		&event.Description,
		&event.CreatedAt,
	)
	if err != nil {
		return domain.Event{}, err
	}
	event.Date = event.Date.UTC()
	event.CreatedAt = event.CreatedAt.UTC()
	return event, nil
}
