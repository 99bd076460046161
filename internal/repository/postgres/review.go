package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/VVikasKumar01/BookStore/internal/domain"
	"github.com/VVikasKumar01/BookStore/pkg/database"
	apperrors "github.com/VVikasKumar01/BookStore/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review. The unique index on (user_id, book_id) rejects
// a second review from the same user for the same book.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, book_id, user_id, rating, title, comment, verified_purchase, status, helpful_voters, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.BookID,
		review.UserID,
		review.Rating,
		review.Title,
		review.Comment,
		review.VerifiedPurchase,
		review.Status,
		review.HelpfulVoters,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("you have already reviewed this book")
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID with the reviewer's name populated.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `
		SELECT r.id, r.book_id, r.user_id, u.name, r.rating, r.title, r.comment,
		       r.verified_purchase, r.status, r.helpful_voters, r.created_at, r.updated_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1`

	var rv domain.Review

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rv.ID,
		&rv.BookID,
		&rv.UserID,
		&rv.UserName,
		&rv.Rating,
		&rv.Title,
		&rv.Comment,
		&rv.VerifiedPurchase,
		&rv.Status,
		&rv.HelpfulVoters,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return &rv, nil
}

// ListApproved returns paginated approved reviews for a book in the requested
// order along with the total approved count.
func (r *ReviewRepository) ListApproved(ctx context.Context, bookID string, sort domain.ReviewSort, page, perPage int) ([]domain.Review, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 10
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	// count(*) OVER() rides along with the page rows, so a page past the
	// last row yields no rows and a total of 0.
	query := fmt.Sprintf(`
		SELECT r.id, r.book_id, r.user_id, u.name, r.rating, r.title, r.comment,
		       r.verified_purchase, r.status, r.helpful_voters, r.created_at, r.updated_at,
		       count(*) OVER() AS total_count
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = $1 AND r.status = $2
		ORDER BY %s
		LIMIT $3 OFFSET $4`, orderClause(sort))

	rows, err := r.pool.Query(ctx, query, bookID, domain.ReviewStatusApproved, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review

		if err := rows.Scan(
			&rv.ID,
			&rv.BookID,
			&rv.UserID,
			&rv.UserName,
			&rv.Rating,
			&rv.Title,
			&rv.Comment,
			&rv.VerifiedPurchase,
			&rv.Status,
			&rv.HelpfulVoters,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// Update modifies a review's rating, title, and comment.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	review.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE reviews
		SET rating = $1, title = $2, comment = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query,
		review.Rating,
		review.Title,
		review.Comment,
		review.UpdatedAt,
		review.ID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}

	return nil
}

// Delete removes a review from the database by its ID.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM reviews WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// ToggleHelpful flips the caller's helpful vote on a review in a single
// conditional UPDATE, so concurrent toggles from different users cannot lose
// each other's votes. The returned review has the reviewer's name populated.
func (r *ReviewRepository) ToggleHelpful(ctx context.Context, reviewID, userID string) (*domain.Review, error) {
	query := `
		WITH updated AS (
			UPDATE reviews
			SET helpful_voters = CASE
				WHEN $2::uuid = ANY(helpful_voters) THEN array_remove(helpful_voters, $2::uuid)
				ELSE array_append(helpful_voters, $2::uuid)
			END,
			updated_at = $3
			WHERE id = $1
			RETURNING id, book_id, user_id, rating, title, comment, verified_purchase, status, helpful_voters, created_at, updated_at
		)
		SELECT r.id, r.book_id, r.user_id, u.name, r.rating, r.title, r.comment,
		       r.verified_purchase, r.status, r.helpful_voters, r.created_at, r.updated_at
		FROM updated r
		JOIN users u ON u.id = r.user_id`

	var rv domain.Review

	err := r.pool.QueryRow(ctx, query, reviewID, userID, time.Now().UTC()).Scan(
		&rv.ID,
		&rv.BookID,
		&rv.UserID,
		&rv.UserName,
		&rv.Rating,
		&rv.Title,
		&rv.Comment,
		&rv.VerifiedPurchase,
		&rv.Status,
		&rv.HelpfulVoters,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("toggle helpful vote: %w", err)
	}

	return &rv, nil
}

// orderClause maps a review sort to its ORDER BY expression. Every ordering
// breaks ties by creation time, newest first.
func orderClause(sort domain.ReviewSort) string {
	switch sort {
	case domain.SortHelpful:
		return "cardinality(r.helpful_voters) DESC, r.created_at DESC"
	case domain.SortRatingHigh:
		return "r.rating DESC, r.created_at DESC"
	case domain.SortRatingLow:
		return "r.rating ASC, r.created_at DESC"
	default:
		return "r.created_at DESC"
	}
}
