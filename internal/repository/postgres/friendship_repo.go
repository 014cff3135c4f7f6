package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"parkpack/internal/domain"
)

const friendshipColumns = `id, requester_id, addressee_id, status, created_at, updated_at`

type friendshipRepository struct {
	DB *sql.DB
}

func NewFriendshipRepository(db *sql.DB) domain.FriendshipRepository {
	return &friendshipRepository{
		DB: db,
	}
}

func (r *friendshipRepository) Create(ctx context.Context, f *domain.Friendship) error {
	query := `
		INSERT INTO friendships (requester_id, addressee_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		f.RequesterID, f.AddresseeID, f.Status, f.CreatedAt, f.UpdatedAt,
	).Scan(&f.ID)
}

func (r *friendshipRepository) GetByID(ctx context.Context, id string) (*domain.Friendship, error) {
	query := `SELECT ` + friendshipColumns + ` FROM friendships WHERE id = $1`
	return scanFriendship(r.DB.QueryRowContext(ctx, query, id))
}

func (r *friendshipRepository) GetByPair(ctx context.Context, userA, userB string) (*domain.Friendship, error) {
	query := `
		SELECT ` + friendshipColumns + `
		FROM friendships
		WHERE (requester_id = $1 AND addressee_id = $2)
		   OR (requester_id = $2 AND addressee_id = $1)
	`
	return scanFriendship(r.DB.QueryRowContext(ctx, query, userA, userB))
}

func (r *friendshipRepository) UpdateStatus(ctx context.Context, id string, status domain.FriendshipStatus, at time.Time) (*domain.Friendship, error) {
	query := `
		UPDATE friendships SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + friendshipColumns
	return scanFriendship(r.DB.QueryRowContext(ctx, query, id, status, at))
}

func (r *friendshipRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM friendships WHERE id = $1`
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

func (r *friendshipRepository) ListFriends(ctx context.Context, userID string) ([]*domain.Profile, error) {
	// friends_of joins friendships against profiles from either direction of
	// the pair; the row API has no single query for it.
	query := `SELECT id, display_name, avatar_url, created_at FROM friends_of($1)`
	rows, err := r.DB.QueryContext(ctx, query, userID)
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

func scanFriendship(row *sql.Row) (*domain.Friendship, error) {
	f := &domain.Friendship{}
	err := row.Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}
