package postgres

import (
	"context"
	"testing"
	"time"

	"parkpack/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPresenceRepository_Create(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	checkedIn := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO presences`).
		WithArgs("user-1", "park-1", checkedIn).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("pres-1"))

	repo := NewPresenceRepository(db)
	p := domain.NewPresence("user-1", "park-1", checkedIn)
	require.NoError(t, repo.Create(ctx, p))
	require.Equal(t, "pres-1", p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPresenceRepository_CheckOut(t *testing.T) {
	ctx := context.Background()

	t.Run("open presence closed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE presences SET checked_out_at`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewPresenceRepository(db)
		closed, err := repo.CheckOut(ctx, "pres-1", time.Now())
		require.NoError(t, err)
		require.True(t, closed)
	})

	t.Run("already closed is a quiet no-op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE presences SET checked_out_at`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewPresenceRepository(db)
		closed, err := repo.CheckOut(ctx, "pres-1", time.Now())
		require.NoError(t, err)
		require.False(t, closed)
	})
}

func TestPresenceRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM presences`).
		WithArgs("pres-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPresenceRepository(db)
	require.ErrorIs(t, repo.Delete(ctx, "pres-1"), domain.ErrNotFound)
}

func TestPresenceRepository_ListOpenByLocation(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	checkedIn := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "location_id", "checked_in_at", "checked_out_at", "animal_ids"}).
		AddRow("pres-1", "user-1", "park-1", checkedIn, nil, `{dog-1,dog-2}`).
		AddRow("pres-2", "user-2", "park-1", checkedIn, nil, `{}`)
	mock.ExpectQuery(`WHERE p.location_id = \$1 AND p.checked_out_at IS NULL`).
		WithArgs("park-1").
		WillReturnRows(rows)

	repo := NewPresenceRepository(db)
	presences, err := repo.ListOpenByLocation(ctx, "park-1")
	require.NoError(t, err)
	require.Len(t, presences, 2)
	require.Equal(t, []string{"dog-1", "dog-2"}, presences[0].AnimalIDs)
	require.Empty(t, presences[1].AnimalIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}
