package postgres

import (
	"context"
	"database/sql"
	"testing"

	"parkpack/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestVoteRepository_Insert(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		mock        func(mock sqlmock.Sqlmock)
		wantOutcome domain.InsertOutcome
		wantErr     bool
	}{
		{
			name: "created",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO votes`).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantOutcome: domain.OutcomeCreated,
		},
		{
			name: "uniqueness conflict is an outcome, not an error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO votes`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantOutcome: domain.OutcomeAlreadyExists,
		},
		{
			name: "other errors pass through",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO votes`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewVoteRepository(db)
			outcome, err := repo.Insert(ctx, domain.VotePhoto, "photo-1", "user-1")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantOutcome, outcome)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVoteRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Zero rows affected is still success; absence is a valid vote state.
	mock.ExpectExec(`DELETE FROM votes`).
		WithArgs(string(domain.VotePhoto), "photo-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewVoteRepository(db)
	require.NoError(t, repo.Delete(ctx, domain.VotePhoto, "photo-1", "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_ListSubjectsVotedBy(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT subject_id`).
		WillReturnRows(sqlmock.NewRows([]string{"subject_id"}).AddRow("photo-1").AddRow("photo-3"))

	repo := NewVoteRepository(db)
	ids, err := repo.ListSubjectsVotedBy(ctx, domain.VotePhoto, []string{"photo-1", "photo-2", "photo-3"}, "user-1")
	require.NoError(t, err)
	require.Equal(t, []string{"photo-1", "photo-3"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}
