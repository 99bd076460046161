package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/VVikasKumar01/BookStore/internal/domain"
	"github.com/VVikasKumar01/BookStore/internal/event"
	"github.com/VVikasKumar01/BookStore/internal/repository"
	"github.com/VVikasKumar01/BookStore/pkg/httputil"
	pkgkafka "github.com/VVikasKumar01/BookStore/pkg/kafka"
	"github.com/VVikasKumar01/BookStore/pkg/middleware"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockBookRepo struct {
	mock.Mock
}

func (m *mockBookRepo) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookRepo) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBookRepo) GetBySlug(ctx context.Context, slug string) (*domain.Book, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBookRepo) List(ctx context.Context, filter repository.BookFilter) ([]domain.Book, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Book), args.Int(1), args.Error(2)
}

func (m *mockBookRepo) Update(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepo) ListApproved(ctx context.Context, bookID string, sort domain.ReviewSort, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, bookID, sort, page, perPage)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReviewRepo) ToggleHelpful(ctx context.Context, reviewID, userID string) (*domain.Review, error) {
	args := m.Called(ctx, reviewID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

type mockRatingRepo struct {
	mock.Mock
}

func (m *mockRatingRepo) Recompute(ctx context.Context, bookID string) (domain.RatingSummary, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(domain.RatingSummary), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepo) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepo) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// =============================================================================
// Shared test helpers
// =============================================================================

const (
	testBookID   = "550e8400-e29b-41d4-a716-446655440001"
	testUserID   = "550e8400-e29b-41d4-a716-446655440002"
	testReviewID = "550e8400-e29b-41d4-a716-446655440003"
	testAdminID  = "550e8400-e29b-41d4-a716-446655440004"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testEventProducer builds a real producer pointed at a broker that is not
// there. Kafka publishes fail silently in tests (no real broker).
func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

// asUser injects the given identity into the request context, standing in
// for the auth middleware.
func asUser(req *http.Request, userID, role string) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), userID, role))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func sampleBook() *domain.Book {
	now := time.Now().UTC()
	return &domain.Book{
		ID:          testBookID,
		Title:       "Clean Code",
		Author:      "Robert C. Martin",
		Slug:        "clean-code",
		Description: "A handbook of agile software craftsmanship",
		Category:    "programming",
		PriceCents:  3499,
		Stock:       10,
		Ratings: domain.RatingSummary{
			Average:      3.6,
			Count:        5,
			Distribution: map[int]int{1: 1, 2: 0, 3: 1, 4: 1, 5: 2},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleReview() *domain.Review {
	now := time.Now().UTC()
	return &domain.Review{
		ID:            testReviewID,
		BookID:        testBookID,
		UserID:        testUserID,
		UserName:      "Test Reader",
		Rating:        4,
		Title:         "Worth reading",
		Comment:       "Changed how I name things.",
		Status:        domain.ReviewStatusApproved,
		HelpfulVoters: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func sampleUser() *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:           testUserID,
		Email:        "reader@example.com",
		PasswordHash: "$2a$12$invalidhashinvalidhashinvalidhashinvalidhashinvalidha",
		Name:         "Test Reader",
		Role:         domain.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
