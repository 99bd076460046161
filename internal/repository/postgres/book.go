package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/VVikasKumar01/BookStore/internal/domain"
	"github.com/VVikasKumar01/BookStore/internal/repository"
	"github.com/VVikasKumar01/BookStore/pkg/database"
	apperrors "github.com/VVikasKumar01/BookStore/pkg/errors"
)

const bookColumns = "id, title, author, slug, description, category, price_cents, stock, image_url, rating_average, rating_count, rating_dist, created_at, updated_at"

// BookRepository implements repository.BookRepository using PostgreSQL.
type BookRepository struct {
	pool database.DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(pool database.DBTX) *BookRepository {
	return &BookRepository{pool: pool}
}

// Create inserts a new book into the database.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	distJSON, err := json.Marshal(b.Ratings.Distribution)
	if err != nil {
		return fmt.Errorf("marshal rating distribution: %w", err)
	}

	query := `
		INSERT INTO books (id, title, author, slug, description, category, price_cents, stock, image_url, rating_average, rating_count, rating_dist, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.pool.Exec(ctx, query,
		b.ID,
		b.Title,
		b.Author,
		b.Slug,
		b.Description,
		b.Category,
		b.PriceCents,
		b.Stock,
		b.ImageURL,
		b.Ratings.Average,
		b.Ratings.Count,
		distJSON,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("book", "slug", b.Slug)
		}
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

// GetByID retrieves a book by its ID.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books WHERE id = $1", bookColumns)
	return r.scanBook(ctx, query, id)
}

// GetBySlug retrieves a book by its slug.
func (r *BookRepository) GetBySlug(ctx context.Context, slug string) (*domain.Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books WHERE slug = $1", bookColumns)
	return r.scanBook(ctx, query, slug)
}

// List returns books matching the given filter with the total count. The
// keyword search matches title and author case-insensitively.
func (r *BookRepository) List(ctx context.Context, filter repository.BookFilter) ([]domain.Book, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query. A page past
	// the last row yields no rows and therefore a total of 0.
	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM books
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		bookColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 12
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var (
		books      []domain.Book
		totalCount int
	)

	for rows.Next() {
		var (
			b        domain.Book
			distJSON []byte
		)

		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Author,
			&b.Slug,
			&b.Description,
			&b.Category,
			&b.PriceCents,
			&b.Stock,
			&b.ImageURL,
			&b.Ratings.Average,
			&b.Ratings.Count,
			&distJSON,
			&b.CreatedAt,
			&b.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan book row: %w", err)
		}

		if err := unmarshalDistribution(distJSON, &b.Ratings); err != nil {
			return nil, 0, err
		}

		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate book rows: %w", err)
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, totalCount, nil
}

// Update modifies an existing book in the database. The rating summary is
// owned by the rating recompute and is not touched here.
func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE books
		SET title = $1, author = $2, slug = $3, description = $4, category = $5,
		    price_cents = $6, stock = $7, image_url = $8, updated_at = $9
		WHERE id = $10`

	ct, err := r.pool.Exec(ctx, query,
		b.Title,
		b.Author,
		b.Slug,
		b.Description,
		b.Category,
		b.PriceCents,
		b.Stock,
		b.ImageURL,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("book", "slug", b.Slug)
		}
		return fmt.Errorf("update book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", b.ID)
	}

	return nil
}

// Delete removes a book from the database by its ID. Reviews cascade via the
// foreign key.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM books WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", id)
	}

	return nil
}

// scanBook is a helper that executes a query expected to return a single book row.
func (r *BookRepository) scanBook(ctx context.Context, query string, args ...any) (*domain.Book, error) {
	var (
		b        domain.Book
		distJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Slug,
		&b.Description,
		&b.Category,
		&b.PriceCents,
		&b.Stock,
		&b.ImageURL,
		&b.Ratings.Average,
		&b.Ratings.Count,
		&distJSON,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	if err := unmarshalDistribution(distJSON, &b.Ratings); err != nil {
		return nil, err
	}

	return &b, nil
}

// unmarshalDistribution decodes the jsonb star distribution, falling back to
// an all-zero distribution for rows written before the column existed.
func unmarshalDistribution(distJSON []byte, summary *domain.RatingSummary) error {
	if len(distJSON) == 0 {
		summary.Distribution = domain.ZeroRatingSummary().Distribution
		return nil
	}
	if err := json.Unmarshal(distJSON, &summary.Distribution); err != nil {
		return fmt.Errorf("unmarshal rating distribution: %w", err)
	}
	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
