package postgres

import (
	"context"
	"testing"
	"time"

	"parkpack/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRSVPRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`ON CONFLICT \(event_id, animal_id\)`).
		WithArgs("ev-1", "user-1", "dog-1", string(domain.RSVPGoing), updated).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("rsvp-1", created))

	repo := NewRSVPRepository(db)
	rsvp := &domain.RSVP{
		EventID:   "ev-1",
		UserID:    "user-1",
		AnimalID:  "dog-1",
		Status:    domain.RSVPGoing,
		UpdatedAt: updated,
	}
	require.NoError(t, repo.Upsert(ctx, rsvp))
	// A replaced RSVP keeps the original id and creation time.
	require.Equal(t, "rsvp-1", rsvp.ID)
	require.Equal(t, created, rsvp.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRSVPRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM rsvps`).
		WithArgs("rsvp-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewRSVPRepository(db)
	require.ErrorIs(t, repo.Delete(ctx, "rsvp-1"), domain.ErrNotFound)
}
