package postgres

import (
	"context"
	"database/sql"
	"errors"

	"parkpack/internal/domain"
)

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{
		DB: db,
	}
}

func (r *rsvpRepository) Upsert(ctx context.Context, rsvp *domain.RSVP) error {
	// A second RSVP for the same animal replaces the first.
	query := `
		INSERT INTO rsvps (event_id, user_id, animal_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (event_id, animal_id)
		DO UPDATE SET status = EXCLUDED.status, user_id = EXCLUDED.user_id, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	return r.DB.QueryRowContext(ctx, query,
		rsvp.EventID, rsvp.UserID, rsvp.AnimalID, rsvp.Status, rsvp.UpdatedAt,
	).Scan(&rsvp.ID, &rsvp.CreatedAt)
}

func (r *rsvpRepository) GetByID(ctx context.Context, id string) (*domain.RSVP, error) {
	query := `
		SELECT id, event_id, user_id, animal_id, status, created_at, updated_at
		FROM rsvps
		WHERE id = $1
	`
	rsvp := &domain.RSVP{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.AnimalID, &rsvp.Status, &rsvp.CreatedAt, &rsvp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (r *rsvpRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM rsvps WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *rsvpRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	query := `
		SELECT id, event_id, user_id, animal_id, status, created_at, updated_at
		FROM rsvps
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rsvps := make([]*domain.RSVP, 0)
	for rows.Next() {
		rsvp := &domain.RSVP{}
		if err := rows.Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.AnimalID, &rsvp.Status, &rsvp.CreatedAt, &rsvp.UpdatedAt); err != nil {
			return nil, err
		}
		rsvps = append(rsvps, rsvp)
	}
	return rsvps, rows.Err()
}
