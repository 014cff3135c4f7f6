package postgres

import (
	"context"
	"database/sql"

	"parkpack/internal/domain"
)

type mediaRepository struct {
	DB *sql.DB
}

func NewMediaRepository(db *sql.DB) domain.MediaRepository {
	return &mediaRepository{
		DB: db,
	}
}

func (r *mediaRepository) CreatePhoto(ctx context.Context, p *domain.Photo) error {
	query := `
		INSERT INTO photos (location_id, uploader_id, url, caption, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, p.LocationID, p.UploaderID, p.URL, p.Caption, p.CreatedAt).Scan(&p.ID)
}

func (r *mediaRepository) ListPhotosByLocation(ctx context.Context, locationID string) ([]*domain.Photo, error) {
	query := `
		SELECT id, location_id, uploader_id, url, caption, created_at
		FROM photos
		WHERE location_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make([]*domain.Photo, 0)
	for rows.Next() {
		p := &domain.Photo{}
		if err := rows.Scan(&p.ID, &p.LocationID, &p.UploaderID, &p.URL, &p.Caption, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *mediaRepository) CreateReview(ctx context.Context, rev *domain.Review) error {
	query := `
		INSERT INTO reviews (location_id, author_id, rating, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, rev.LocationID, rev.AuthorID, rev.Rating, rev.Body, rev.CreatedAt).Scan(&rev.ID)
}

func (r *mediaRepository) ListReviewsByLocation(ctx context.Context, locationID string) ([]*domain.Review, error) {
	query := `
		SELECT id, location_id, author_id, rating, body, created_at
		FROM reviews
		WHERE location_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]*domain.Review, 0)
	for rows.Next() {
		rev := &domain.Review{}
		if err := rows.Scan(&rev.ID, &rev.LocationID, &rev.AuthorID, &rev.Rating, &rev.Body, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}
