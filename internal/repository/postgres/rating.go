package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/VVikasKumar01/BookStore/internal/domain"
	"github.com/VVikasKumar01/BookStore/pkg/database"
	apperrors "github.com/VVikasKumar01/BookStore/pkg/errors"
)

// RatingRepository recomputes the denormalized rating summary on book rows.
type RatingRepository struct {
	pool database.Pool
}

// NewRatingRepository creates a new PostgreSQL-backed rating repository.
func NewRatingRepository(pool database.Pool) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// Recompute derives the rating summary from all approved reviews of the book
// and writes it back to the book row. The whole read-derive-write runs in one
// transaction holding a row lock on the book, so two recomputes triggered by
// near-simultaneous review writes serialize instead of overwriting each other
// with stale aggregates.
func (r *RatingRepository) Recompute(ctx context.Context, bookID string) (domain.RatingSummary, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("begin recompute tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var lockedID string
	err = tx.QueryRow(ctx, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, bookID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RatingSummary{}, apperrors.NotFound("book", bookID)
		}
		return domain.RatingSummary{}, fmt.Errorf("lock book row: %w", err)
	}

	ratings, err := approvedRatings(ctx, tx, bookID)
	if err != nil {
		return domain.RatingSummary{}, err
	}

	summary := domain.SummarizeRatings(ratings)

	distJSON, err := json.Marshal(summary.Distribution)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("marshal rating distribution: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE books
		SET rating_average = $1, rating_count = $2, rating_dist = $3, updated_at = $4
		WHERE id = $5`,
		summary.Average,
		summary.Count,
		distJSON,
		time.Now().UTC(),
		bookID,
	)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("update rating summary: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.RatingSummary{}, fmt.Errorf("commit recompute tx: %w", err)
	}

	return summary, nil
}

// approvedRatings reads the star values of all approved reviews for the book.
func approvedRatings(ctx context.Context, tx pgx.Tx, bookID string) ([]int, error) {
	rows, err := tx.Query(ctx, `SELECT rating FROM reviews WHERE book_id = $1 AND status = $2`,
		bookID, domain.ReviewStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("select approved ratings: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating rows: %w", err)
	}

	return ratings, nil
}
