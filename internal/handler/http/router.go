package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VVikasKumar01/BookStore/internal/auth"
	"github.com/VVikasKumar01/BookStore/internal/domain"
	"github.com/VVikasKumar01/BookStore/internal/service"
	"github.com/VVikasKumar01/BookStore/pkg/health"
	"github.com/VVikasKumar01/BookStore/pkg/middleware"
)

// RouterConfig carries the dependencies and settings for building the router.
type RouterConfig struct {
	BookService    *service.BookService
	ReviewService  *service.ReviewService
	UserService    *service.UserService
	CartService    *service.CartService
	JWTManager     *auth.JWTManager
	HealthHandler  *health.Handler
	AllowedOrigins []string
	Environment    string
	Logger         *slog.Logger
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Environment:    cfg.Environment,
	}))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("bookstore-api"))

	// Health and metrics endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := middleware.Auth(tokenValidator(cfg.JWTManager))
	requireAdmin := middleware.RequireRole(domain.RoleAdmin)

	// Auth API endpoints
	authHandler := NewAuthHandler(cfg.UserService, cfg.Logger)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.Profile)
		})
	})

	// Book API endpoints
	bookHandler := NewBookHandler(cfg.BookService, cfg.Logger)

	r.Route("/api/v1/books", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", bookHandler.ListBooks)
		r.Get("/{idOrSlug}", bookHandler.GetBook)

		// Catalog management is admin only
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Post("/", bookHandler.CreateBook)
			r.Put("/{id}", bookHandler.UpdateBook)
			r.Delete("/{id}", bookHandler.DeleteBook)
		})
	})

	// Review API endpoints (nested under books)
	reviewHandler := NewReviewHandler(cfg.ReviewService, cfg.Logger)

	r.Route("/api/v1/books/{bookId}/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", reviewHandler.ListReviews)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", reviewHandler.CreateReview)
		})
	})

	// Review API endpoints addressed by review ID
	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(requireAuth)

		r.Put("/{id}", reviewHandler.UpdateReview)
		r.Delete("/{id}", reviewHandler.DeleteReview)
		r.Put("/{id}/helpful", reviewHandler.ToggleHelpful)
	})

	// Cart API endpoints
	cartHandler := NewCartHandler(cfg.CartService, cfg.Logger)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(requireAuth)

		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)
		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{bookId}", cartHandler.UpdateItem)
		r.Delete("/items/{bookId}", cartHandler.RemoveItem)
	})

	return r
}

// tokenValidator adapts the JWT manager to the auth middleware.
func tokenValidator(m *auth.JWTManager) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := m.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}
}
