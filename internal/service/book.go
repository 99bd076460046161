package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/VVikasKumar01/BookStore/internal/domain"
	"github.com/VVikasKumar01/BookStore/internal/event"
	"github.com/VVikasKumar01/BookStore/internal/repository"
	apperrors "github.com/VVikasKumar01/BookStore/pkg/errors"
	"github.com/VVikasKumar01/BookStore/pkg/pagination"
	"github.com/VVikasKumar01/BookStore/pkg/slug"
)

// BookService implements the business logic for catalog operations.
type BookService struct {
	repo     repository.BookRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(repo repository.BookRepository, producer *event.Producer, logger *slog.Logger) *BookService {
	return &BookService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateBookInput holds the parameters for creating a book.
type CreateBookInput struct {
	Title       string
	Author      string
	Description string
	Category    string
	PriceCents  int64
	Stock       int
	ImageURL    string
}

// UpdateBookInput holds the parameters for updating a book. Nil fields keep
// their current value.
type UpdateBookInput struct {
	Title       *string
	Author      *string
	Description *string
	Category    *string
	PriceCents  *int64
	Stock       *int
	ImageURL    *string
}

// ListBooksInput holds the parameters for listing books.
type ListBooksInput struct {
	Search   string
	Category string
	Page     int
	PerPage  int
}

// ListBooks returns a page of books matching the search keyword and category
// filter. An empty keyword matches everything.
func (s *BookService) ListBooks(ctx context.Context, input ListBooksInput) (*pagination.Result[domain.Book], error) {
	filter := repository.BookFilter{
		Page:    input.Page,
		PerPage: input.PerPage,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 12
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	if search := strings.TrimSpace(input.Search); search != "" {
		filter.Search = &search
	}
	if category := strings.TrimSpace(input.Category); category != "" {
		filter.Category = &category
	}

	books, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	result := pagination.NewResult(books, total, pagination.Params{
		Page:     filter.Page,
		PageSize: filter.PerPage,
	})
	return &result, nil
}

// GetBook retrieves a book by its ID.
func (s *BookService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book by id: %w", err)
	}
	return book, nil
}

// GetBookBySlug retrieves a book by its slug.
func (s *BookService) GetBookBySlug(ctx context.Context, bookSlug string) (*domain.Book, error) {
	book, err := s.repo.GetBySlug(ctx, bookSlug)
	if err != nil {
		return nil, fmt.Errorf("get book by slug: %w", err)
	}
	return book, nil
}

// CreateBook creates a new catalog book with a zero rating summary.
func (s *BookService) CreateBook(ctx context.Context, input *CreateBookInput) (*domain.Book, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Author == "" {
		return nil, apperrors.InvalidInput("author is required")
	}
	if input.PriceCents < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.Stock < 0 {
		return nil, apperrors.InvalidInput("stock must not be negative")
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Author:      input.Author,
		Slug:        slug.Generate(input.Title),
		Description: input.Description,
		Category:    input.Category,
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		Ratings:     domain.ZeroRatingSummary(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if err := s.producer.PublishBookCreated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.created event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID),
		slog.String("slug", book.Slug),
	)

	return book, nil
}

// UpdateBook modifies an existing book. Only fields present in the input
// change; the slug follows the title.
func (s *BookService) UpdateBook(ctx context.Context, id string, input *UpdateBookInput) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book by id: %w", err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("title must not be empty")
		}
		book.Title = *input.Title
		book.Slug = slug.Generate(*input.Title)
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.Category != nil {
		book.Category = *input.Category
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		book.PriceCents = *input.PriceCents
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, apperrors.InvalidInput("stock must not be negative")
		}
		book.Stock = *input.Stock
	}
	if input.ImageURL != nil {
		book.ImageURL = *input.ImageURL
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	if err := s.producer.PublishBookUpdated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.updated event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book updated",
		slog.String("book_id", book.ID),
		slog.String("slug", book.Slug),
	)

	return book, nil
}

// DeleteBook removes a book from the catalog along with its reviews.
func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if err := s.producer.PublishBookDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.deleted event",
			slog.String("book_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book deleted",
		slog.String("book_id", id),
	)

	return nil
}
