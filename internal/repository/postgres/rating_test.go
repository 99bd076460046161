package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VVikasKumar01/BookStore/internal/domain"
	apperrors "github.com/VVikasKumar01/BookStore/pkg/errors"
)

func TestRatingRepository_Recompute_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewRatingRepository(mock)

	mock.ExpectBegin()

	mock.ExpectQuery("SELECT id FROM books WHERE id = .+ FOR UPDATE").
		WithArgs("book-1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("book-1"))

	mock.ExpectQuery("SELECT rating FROM reviews").
		WithArgs("book-1", domain.ReviewStatusApproved).
		WillReturnRows(pgxmock.NewRows([]string{"rating"}).
			AddRow(5).AddRow(5).AddRow(4).AddRow(3).AddRow(1))

	mock.ExpectExec("UPDATE books").
		WithArgs(3.6, 5, pgxmock.AnyArg(), pgxmock.AnyArg(), "book-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectCommit()

	summary, err := repo.Recompute(context.Background(), "book-1")
	require.NoError(t, err)
	assert.Equal(t, 3.6, summary.Average)
	assert.Equal(t, 5, summary.Count)
	assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 1, 4: 1, 5: 2}, summary.Distribution)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepository_Recompute_NoApprovedReviews(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewRatingRepository(mock)

	mock.ExpectBegin()

	mock.ExpectQuery("SELECT id FROM books WHERE id = .+ FOR UPDATE").
		WithArgs("book-1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("book-1"))

	mock.ExpectQuery("SELECT rating FROM reviews").
		WithArgs("book-1", domain.ReviewStatusApproved).
		WillReturnRows(pgxmock.NewRows([]string{"rating"}))

	mock.ExpectExec("UPDATE books").
		WithArgs(0.0, 0, pgxmock.AnyArg(), pgxmock.AnyArg(), "book-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectCommit()

	summary, err := repo.Recompute(context.Background(), "book-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ZeroRatingSummary(), summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepository_Recompute_BookNotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewRatingRepository(mock)

	mock.ExpectBegin()

	mock.ExpectQuery("SELECT id FROM books WHERE id = .+ FOR UPDATE").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectRollback()

	_, err := repo.Recompute(context.Background(), "missing-id")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepository_Recompute_BeginError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewRatingRepository(mock)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := repo.Recompute(context.Background(), "book-1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
