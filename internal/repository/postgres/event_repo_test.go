package postgres

import (
	"context"
	"testing"
	"time"

	"parkpack/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var eventCols = []string{"id", "organizer_id", "location_id", "title", "description", "starts_at", "ends_at", "max_capacity", "status", "created_at", "updated_at"}

func eventRow(id string, status domain.EventStatus, endsAt time.Time) *sqlmock.Rows {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(eventCols).
		AddRow(id, "user-1", "park-1", "Morning romp", "", now, endsAt, nil, string(status), now, now)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO events`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))

	repo := NewEventRepository(db)
	e := &domain.Event{
		OrganizerID: "user-1",
		LocationID:  "park-1",
		Title:       "Morning romp",
		StartsAt:    time.Now(),
		EndsAt:      time.Now().Add(time.Hour),
		Status:      domain.EventScheduled,
	}
	require.NoError(t, repo.Create(ctx, e))
	require.Equal(t, "ev-1", e.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Cancel(t *testing.T) {
	ctx := context.Background()
	ends := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("scheduled event cancelled", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET status = 'cancelled'`).
			WithArgs("ev-1").
			WillReturnRows(eventRow("ev-1", domain.EventCancelled, ends))

		repo := NewEventRepository(db)
		e, err := repo.Cancel(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, domain.EventCancelled, e.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no longer scheduled maps to not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET status = 'cancelled'`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows(eventCols))

		repo := NewEventRepository(db)
		_, err = repo.Cancel(ctx, "ev-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_ForceExpire(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ends := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM force_expire\(\$1\)`).
		WithArgs("ev-1").
		WillReturnRows(eventRow("ev-1", domain.EventCompleted, ends))

	repo := NewEventRepository(db)
	e, err := repo.ForceExpire(ctx, "ev-1")
	require.NoError(t, err)
	require.Equal(t, domain.EventCompleted, e.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListActiveByLocation(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE location_id = \$1 AND status = 'scheduled' AND ends_at > \$2`).
		WithArgs("park-1", now).
		WillReturnRows(eventRow("ev-1", domain.EventScheduled, now.Add(time.Hour)))

	repo := NewEventRepository(db)
	events, err := repo.ListActiveByLocation(ctx, "park-1", now)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Nil(t, events[0].MaxCapacity)
	require.NoError(t, mock.ExpectationsWereMet())
}
