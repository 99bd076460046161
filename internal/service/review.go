package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/VVikasKumar01/BookStore/internal/authz"
	"github.com/VVikasKumar01/BookStore/internal/domain"
	"github.com/VVikasKumar01/BookStore/internal/event"
	"github.com/VVikasKumar01/BookStore/internal/repository"
	apperrors "github.com/VVikasKumar01/BookStore/pkg/errors"
)

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	BookID  string
	UserID  string
	Rating  int
	Title   string
	Comment string
}

// UpdateReviewInput holds the parameters for updating a review. Nil fields
// keep their current value, so a zero rating or empty title in the request
// body cannot silently erase existing content.
type UpdateReviewInput struct {
	Rating  *int
	Title   *string
	Comment *string
}

// ReviewListResult contains one page of reviews plus the book's rating summary.
type ReviewListResult struct {
	Reviews    []domain.Review      `json:"reviews"`
	Summary    domain.RatingSummary `json:"summary"`
	TotalCount int                  `json:"total_count"`
	Page       int                  `json:"page"`
	PerPage    int                  `json:"per_page"`
	TotalPages int                  `json:"total_pages"`
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	reviews  repository.ReviewRepository
	ratings  repository.RatingRepository
	books    repository.BookRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	ratings repository.RatingRepository,
	books repository.BookRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		ratings:  ratings,
		books:    books,
		producer: producer,
		logger:   logger,
	}
}

// ListReviews returns paginated approved reviews for a book along with the
// book's denormalized rating summary.
func (s *ReviewService) ListReviews(ctx context.Context, bookID string, sort domain.ReviewSort, page, perPage int) (*ReviewListResult, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	reviews, total, err := s.reviews.ListApproved(ctx, bookID, sort, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	totalPages := total / perPage
	if total%perPage > 0 {
		totalPages++
	}

	return &ReviewListResult{
		Reviews:    reviews,
		Summary:    book.Ratings,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// CreateReview creates a review for a book and refreshes the book's rating
// summary. A user gets one review per book; a second submission is rejected.
func (s *ReviewService) CreateReview(ctx context.Context, input *CreateReviewInput) (*domain.Review, error) {
	if err := validateRating(input.Rating); err != nil {
		return nil, err
	}
	if err := validateReviewText(input.Title, input.Comment); err != nil {
		return nil, err
	}

	if _, err := s.books.GetByID(ctx, input.BookID); err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:            uuid.New().String(),
		BookID:        input.BookID,
		UserID:        input.UserID,
		Rating:        input.Rating,
		Title:         strings.TrimSpace(input.Title),
		Comment:       strings.TrimSpace(input.Comment),
		Status:        domain.ReviewStatusApproved,
		HelpfulVoters: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	// Re-read through the store so the response carries the reviewer's name.
	review, err := s.reviews.GetByID(ctx, review.ID)
	if err != nil {
		return nil, fmt.Errorf("load created review: %w", err)
	}

	summary, err := s.ratings.Recompute(ctx, review.BookID)
	if err != nil {
		return nil, fmt.Errorf("recompute rating summary: %w", err)
	}

	if err := s.producer.PublishReviewCreated(ctx, review, summary); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
		slog.String("user_id", review.UserID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// UpdateReview modifies the caller's own review. Only fields present in the
// input change; the book's rating summary is refreshed afterwards.
func (s *ReviewService) UpdateReview(ctx context.Context, actor authz.Actor, reviewID string, input *UpdateReviewInput) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	if err := authz.CanEditReview(actor, review); err != nil {
		return nil, err
	}

	if input.Rating != nil {
		if err := validateRating(*input.Rating); err != nil {
			return nil, err
		}
		review.Rating = *input.Rating
	}
	if input.Title != nil {
		review.Title = strings.TrimSpace(*input.Title)
	}
	if input.Comment != nil {
		review.Comment = strings.TrimSpace(*input.Comment)
	}
	if err := validateReviewText(review.Title, review.Comment); err != nil {
		return nil, err
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	summary, err := s.ratings.Recompute(ctx, review.BookID)
	if err != nil {
		return nil, fmt.Errorf("recompute rating summary: %w", err)
	}

	if err := s.producer.PublishReviewUpdated(ctx, review, summary); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.updated event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
	)

	return review, nil
}

// DeleteReview removes a review. The author may delete their own review;
// admins may delete any review. The book's rating summary is refreshed.
func (s *ReviewService) DeleteReview(ctx context.Context, actor authz.Actor, reviewID string) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("get review: %w", err)
	}

	if err := authz.CanDeleteReview(actor, review); err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	summary, err := s.ratings.Recompute(ctx, review.BookID)
	if err != nil {
		return fmt.Errorf("recompute rating summary: %w", err)
	}

	if err := s.producer.PublishReviewDeleted(ctx, review, summary); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
		slog.String("deleted_by", actor.ID),
	)

	return nil
}

// ToggleHelpful flips the caller's helpful vote on a review. Voting again
// withdraws the vote. Helpful votes do not affect the rating summary.
func (s *ReviewService) ToggleHelpful(ctx context.Context, userID, reviewID string) (*domain.Review, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	review, err := s.reviews.ToggleHelpful(ctx, reviewID, userID)
	if err != nil {
		return nil, fmt.Errorf("toggle helpful vote: %w", err)
	}

	s.logger.InfoContext(ctx, "helpful vote toggled",
		slog.String("review_id", review.ID),
		slog.String("user_id", userID),
		slog.Int("helpful_count", review.HelpfulCount()),
	)

	return review, nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.InvalidInput("rating must be between 1 and 5")
	}
	return nil
}

func validateReviewText(title, comment string) error {
	if len(title) > domain.MaxReviewTitleLen {
		return apperrors.InvalidInput(fmt.Sprintf("title must be at most %d characters", domain.MaxReviewTitleLen))
	}
	if len(comment) > domain.MaxReviewCommentLen {
		return apperrors.InvalidInput(fmt.Sprintf("comment must be at most %d characters", domain.MaxReviewCommentLen))
	}
	return nil
}
