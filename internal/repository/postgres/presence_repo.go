package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"parkpack/internal/domain"

	"github.com/lib/pq"
)

type presenceRepository struct {
	DB *sql.DB
}

func NewPresenceRepository(db *sql.DB) domain.PresenceRepository {
	return &presenceRepository{
		DB: db,
	}
}

func (r *presenceRepository) Create(ctx context.Context, p *domain.Presence) error {
	query := `
		INSERT INTO presences (user_id, location_id, checked_in_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, p.UserID, p.LocationID, p.CheckedInAt).Scan(&p.ID)
}

func (r *presenceRepository) AttachAnimal(ctx context.Context, presenceID, animalID string) error {
	query := `
		INSERT INTO presence_animals (presence_id, animal_id)
		VALUES ($1, $2)
	`
	_, err := r.DB.ExecContext(ctx, query, presenceID, animalID)
	return err
}

func (r *presenceRepository) Delete(ctx context.Context, id string) error {
	// presence_animals rows go with it (ON DELETE CASCADE), so the
	// compensating delete after a failed check-in removes the whole ghost.
	query := `DELETE FROM presences WHERE id = $1`
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

func (r *presenceRepository) CheckOut(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE presences SET checked_out_at = $2
		WHERE id = $1 AND checked_out_at IS NULL
	`
	result, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *presenceRepository) GetOpenByUser(ctx context.Context, userID string) (*domain.Presence, error) {
	query := `
		SELECT p.id, p.user_id, p.location_id, p.checked_in_at, p.checked_out_at,
			COALESCE(array_agg(pa.animal_id) FILTER (WHERE pa.animal_id IS NOT NULL), '{}')
		FROM presences p
		LEFT JOIN presence_animals pa ON pa.presence_id = p.id
		WHERE p.user_id = $1 AND p.checked_out_at IS NULL
		GROUP BY p.id
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *presenceRepository) ListOpenByLocation(ctx context.Context, locationID string) ([]*domain.Presence, error) {
	query := `
		SELECT p.id, p.user_id, p.location_id, p.checked_in_at, p.checked_out_at,
			COALESCE(array_agg(pa.animal_id) FILTER (WHERE pa.animal_id IS NOT NULL), '{}')
		FROM presences p
		LEFT JOIN presence_animals pa ON pa.presence_id = p.id
		WHERE p.location_id = $1 AND p.checked_out_at IS NULL
		GROUP BY p.id
		ORDER BY p.checked_in_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	presences := make([]*domain.Presence, 0)
	for rows.Next() {
		p := &domain.Presence{}
		var outNull sql.NullTime
		var animalIDs pq.StringArray
		if err := rows.Scan(&p.ID, &p.UserID, &p.LocationID, &p.CheckedInAt, &outNull, &animalIDs); err != nil {
			return nil, err
		}
		if outNull.Valid {
			p.CheckedOutAt = &outNull.Time
		}
		p.AnimalIDs = animalIDs
		presences = append(presences, p)
	}
	return presences, rows.Err()
}

func (r *presenceRepository) scanOne(row *sql.Row) (*domain.Presence, error) {
	p := &domain.Presence{}
	var outNull sql.NullTime
	var animalIDs pq.StringArray
	err := row.Scan(&p.ID, &p.UserID, &p.LocationID, &p.CheckedInAt, &outNull, &animalIDs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if outNull.Valid {
		p.CheckedOutAt = &outNull.Time
	}
	p.AnimalIDs = animalIDs
	return p, nil
}
