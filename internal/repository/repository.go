// Package repository defines the persistence interfaces consumed by the
// service layer. PostgreSQL implementations live in the postgres
// subpackage, the Redis-backed cart store in the redis subpackage.
package repository

import (
	"context"

	"github.com/VVikasKumar01/BookStore/internal/domain"
)

// BookFilter defines filter criteria for listing books.
type BookFilter struct {
	Search   *string
	Category *string
	Page     int
	PerPage  int
}

// BookRepository defines the interface for book persistence operations.
type BookRepository interface {
	// Create inserts a new book into the store.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Book, error)

	// GetBySlug retrieves a book by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Book, error)

	// List returns books matching the given filter along with the total count.
	List(ctx context.Context, filter BookFilter) ([]domain.Book, int, error)

	// Update modifies an existing book in the store.
	Update(ctx context.Context, book *domain.Book) error

	// Delete removes a book from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review. It returns a conflict error when the
	// user already has a review for the book.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListApproved returns approved reviews for a book in the given order,
	// along with the total approved count. Reviewer names are populated.
	ListApproved(ctx context.Context, bookID string, sort domain.ReviewSort, page, perPage int) ([]domain.Review, int, error)

	// Update modifies an existing review's rating, title, and comment.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review by its identifier.
	Delete(ctx context.Context, id string) error

	// ToggleHelpful adds the user to the review's helpful voters if absent,
	// removes them if present, and returns the updated review.
	ToggleHelpful(ctx context.Context, reviewID, userID string) (*domain.Review, error)
}

// RatingRepository recomputes the denormalized rating summary stored on books.
type RatingRepository interface {
	// Recompute reads all approved review ratings for the book, derives the
	// summary, and persists it on the book row in a single transaction.
	// The book row is locked for the duration so concurrent recomputes
	// serialize rather than overwrite each other.
	Recompute(ctx context.Context, bookID string) (domain.RatingSummary, error)
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves the cart for the given user, or a not-found error.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save stores the cart, refreshing its expiry.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart for the given user.
	Delete(ctx context.Context, userID string) error
}
