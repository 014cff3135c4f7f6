package postgres

import (
	"context"
	"database/sql"
	"errors"

	"parkpack/internal/domain"

	"github.com/lib/pq"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{
		DB: db,
	}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT id, display_name, avatar_url, created_at FROM profiles WHERE id = $1`
	p := &domain.Profile{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.DisplayName, &p.AvatarURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Profile, error) {
	query := `SELECT id, display_name, avatar_url, created_at FROM profiles WHERE id = ANY($1)`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]*domain.Profile, 0)
	for rows.Next() {
		p := &domain.Profile{}
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.AvatarURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) ListAnimalsByIDs(ctx context.Context, ids []string) ([]*domain.Animal, error) {
	query := `SELECT id, owner_id, name, breed, avatar_url, created_at FROM animals WHERE id = ANY($1)`
	return r.listAnimals(ctx, query, pq.Array(ids))
}

func (r *profileRepository) ListAnimalsByOwner(ctx context.Context, ownerID string) ([]*domain.Animal, error) {
	query := `SELECT id, owner_id, name, breed, avatar_url, created_at FROM animals WHERE owner_id = $1 ORDER BY name ASC`
	return r.listAnimals(ctx, query, ownerID)
}

func (r *profileRepository) listAnimals(ctx context.Context, query string, arg interface{}) ([]*domain.Animal, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	animals := make([]*domain.Animal, 0)
	for rows.Next() {
		a := &domain.Animal{}
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Breed, &a.AvatarURL, &a.CreatedAt); err != nil {
			return nil, err
		}
		animals = append(animals, a)
	}
	return animals, rows.Err()
}
