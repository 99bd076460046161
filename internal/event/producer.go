package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/VVikasKumar01/BookStore/internal/domain"
	pkgkafka "github.com/VVikasKumar01/BookStore/pkg/kafka"
)

// Kafka topic constants for bookstore domain events.
const (
	TopicBookCreated   = "bookstore.book.created"
	TopicBookUpdated   = "bookstore.book.updated"
	TopicBookDeleted   = "bookstore.book.deleted"
	TopicReviewCreated = "bookstore.review.created"
	TopicReviewUpdated = "bookstore.review.updated"
	TopicReviewDeleted = "bookstore.review.deleted"
	TopicUserCreated   = "bookstore.user.created"
)

// Aggregate type constants.
const (
	AggregateTypeBook   = "book"
	AggregateTypeReview = "review"
	AggregateTypeUser   = "user"
)

// Source identifier for events originating from this API.
const SourceBookstoreAPI = "bookstore-api"

// BookData is the payload for book.created and book.updated events.
type BookData struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Slug       string `json:"slug"`
	Category   string `json:"category"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
}

// BookDeletedData is the payload for a book.deleted event.
type BookDeletedData struct {
	ID string `json:"id"`
}

// ReviewData is the payload for review lifecycle events. It carries the
// recomputed rating summary so downstream consumers (search, recommendations)
// can update without re-reading the book.
type ReviewData struct {
	ID            string  `json:"id"`
	BookID        string  `json:"book_id"`
	UserID        string  `json:"user_id"`
	Rating        int     `json:"rating"`
	RatingAverage float64 `json:"rating_average"`
	RatingCount   int     `json:"rating_count"`
}

// UserCreatedData is the payload for a user.created event.
type UserCreatedData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Producer publishes bookstore domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func bookData(b *domain.Book) BookData {
	return BookData{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Slug:       b.Slug,
		Category:   b.Category,
		PriceCents: b.PriceCents,
		Stock:      b.Stock,
	}
}

func reviewData(rv *domain.Review, summary domain.RatingSummary) ReviewData {
	return ReviewData{
		ID:            rv.ID,
		BookID:        rv.BookID,
		UserID:        rv.UserID,
		Rating:        rv.Rating,
		RatingAverage: summary.Average,
		RatingCount:   summary.Count,
	}
}

// PublishBookCreated publishes a book.created event.
func (p *Producer) PublishBookCreated(ctx context.Context, book *domain.Book) error {
	return p.publish(ctx, TopicBookCreated, book.ID, AggregateTypeBook, bookData(book))
}

// PublishBookUpdated publishes a book.updated event.
func (p *Producer) PublishBookUpdated(ctx context.Context, book *domain.Book) error {
	return p.publish(ctx, TopicBookUpdated, book.ID, AggregateTypeBook, bookData(book))
}

// PublishBookDeleted publishes a book.deleted event.
func (p *Producer) PublishBookDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicBookDeleted, id, AggregateTypeBook, BookDeletedData{ID: id})
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review, summary domain.RatingSummary) error {
	return p.publish(ctx, TopicReviewCreated, review.ID, AggregateTypeReview, reviewData(review, summary))
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review, summary domain.RatingSummary) error {
	return p.publish(ctx, TopicReviewUpdated, review.ID, AggregateTypeReview, reviewData(review, summary))
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review, summary domain.RatingSummary) error {
	return p.publish(ctx, TopicReviewDeleted, review.ID, AggregateTypeReview, reviewData(review, summary))
}

// PublishUserCreated publishes a user.created event.
func (p *Producer) PublishUserCreated(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserCreated, user.ID, AggregateTypeUser, UserCreatedData{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceBookstoreAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published domain event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
