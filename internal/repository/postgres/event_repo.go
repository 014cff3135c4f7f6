package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"parkpack/internal/domain"
)

const eventColumns = `id, organizer_id, location_id, title, description, starts_at, ends_at, max_capacity, status, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (organizer_id, location_id, title, description, starts_at, ends_at, max_capacity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.OrganizerID, e.LocationID, e.Title, e.Description,
		e.StartsAt, e.EndsAt, e.MaxCapacity, e.Status, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) Cancel(ctx context.Context, id string) (*domain.Event, error) {
	// Conditional update: only a scheduled event can be cancelled, so a racing
	// cancel or expiration leaves exactly one winner.
	query := `
		UPDATE events SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled'
		RETURNING ` + eventColumns
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) ForceExpire(ctx context.Context, id string) (*domain.Event, error) {
	// force_expire performs "SET completed WHERE status = 'scheduled'" and
	// returns the row either way, so redundant concurrent calls are no-ops.
	query := `SELECT ` + eventColumns + ` FROM force_expire($1)`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) ListActiveByLocation(ctx context.Context, locationID string, now time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE location_id = $1 AND status = 'scheduled' AND ends_at > $2
		ORDER BY starts_at ASC
	`
	return r.list(ctx, query, locationID, now)
}

func (r *eventRepository) ListPastByLocation(ctx context.Context, locationID string, now time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE location_id = $1 AND (status <> 'scheduled' OR ends_at <= $2)
		ORDER BY starts_at DESC
	`
	return r.list(ctx, query, locationID, now)
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		ORDER BY starts_at DESC
	`
	return r.list(ctx, query, organizerID)
}

func (r *eventRepository) ListAttending(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `
		SELECT DISTINCT e.id, e.organizer_id, e.location_id, e.title, e.description, e.starts_at, e.ends_at, e.max_capacity, e.status, e.created_at, e.updated_at
		FROM events e
		JOIN rsvps r ON r.event_id = e.id
		JOIN animals a ON a.id = r.animal_id
		WHERE a.owner_id = $1
		ORDER BY e.starts_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		var capNull sql.NullInt64
		if err := rows.Scan(
			&e.ID, &e.OrganizerID, &e.LocationID, &e.Title, &e.Description,
			&e.StartsAt, &e.EndsAt, &capNull, &e.Status, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if capNull.Valid {
			c := int(capNull.Int64)
			e.MaxCapacity = &c
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var capNull sql.NullInt64
	err := row.Scan(
		&e.ID, &e.OrganizerID, &e.LocationID, &e.Title, &e.Description,
		&e.StartsAt, &e.EndsAt, &capNull, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if capNull.Valid {
		c := int(capNull.Int64)
		e.MaxCapacity = &c
	}
	return e, nil
}
