package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"parkpack/internal/domain"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code for a unique constraint conflict.
const uniqueViolation = "23505"

type voteRepository struct {
	DB *sql.DB
}

func NewVoteRepository(db *sql.DB) domain.VoteRepository {
	return &voteRepository{
		DB: db,
	}
}

func (r *voteRepository) Insert(ctx context.Context, kind domain.VoteKind, subjectID, voterID string) (domain.InsertOutcome, error) {
	query := `
		INSERT INTO votes (kind, subject_id, voter_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.DB.ExecContext(ctx, query, kind, subjectID, voterID, time.Now())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.OutcomeAlreadyExists, nil
		}
		return 0, err
	}
	return domain.OutcomeCreated, nil
}

func (r *voteRepository) Delete(ctx context.Context, kind domain.VoteKind, subjectID, voterID string) error {
	// Deleting an absent vote is not an error; existence is the whole record.
	query := `DELETE FROM votes WHERE kind = $1 AND subject_id = $2 AND voter_id = $3`
	_, err := r.DB.ExecContext(ctx, query, kind, subjectID, voterID)
	return err
}

func (r *voteRepository) ListBySubjects(ctx context.Context, kind domain.VoteKind, subjectIDs []string) ([]*domain.Vote, error) {
	query := `
		SELECT kind, subject_id, voter_id, created_at
		FROM votes
		WHERE kind = $1 AND subject_id = ANY($2)
	`
	rows, err := r.DB.QueryContext(ctx, query, kind, pq.Array(subjectIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := make([]*domain.Vote, 0)
	for rows.Next() {
		v := &domain.Vote{}
		if err := rows.Scan(&v.Kind, &v.SubjectID, &v.VoterID, &v.CreatedAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (r *voteRepository) ListSubjectsVotedBy(ctx context.Context, kind domain.VoteKind, subjectIDs []string, voterID string) ([]string, error) {
	query := `
		SELECT subject_id
		FROM votes
		WHERE kind = $1 AND subject_id = ANY($2) AND voter_id = $3
	`
	rows, err := r.DB.QueryContext(ctx, query, kind, pq.Array(subjectIDs), voterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
