package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/VVikasKumar01/BookStore/internal/auth"
	"github.com/VVikasKumar01/BookStore/internal/domain"
	"github.com/VVikasKumar01/BookStore/internal/service"
	apperrors "github.com/VVikasKumar01/BookStore/pkg/errors"
)

const authTestSecret = "test-secret"

func authTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager(authTestSecret, 15*time.Minute, 24*time.Hour)
}

func authTestHandler(repo *mockUserRepo) *AuthHandler {
	svc := service.NewUserService(repo, authTestJWTManager(), 15*time.Minute, testEventProducer(), testLogger())
	return NewAuthHandler(svc, testLogger())
}

func authRouter(handler *AuthHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/refresh", handler.Refresh)
		r.Get("/me", handler.Profile)
	})
	return r
}

// authTokensResponse mirrors the register/login response shape.
type authTokensResponse struct {
	User   domain.User      `json:"user"`
	Tokens domain.TokenPair `json:"tokens"`
}

// =============================================================================
// POST /api/v1/auth/register - Register
// =============================================================================

func TestRegister_Success(t *testing.T) {
	repo := new(mockUserRepo)
	router := authRouter(authTestHandler(repo))

	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "reader@example.com" && u.Role == domain.RoleCustomer
	})).Return(nil)

	body := RegisterRequest{
		Email:    "Reader@Example.com",
		Password: "Sup3rSecret",
		Name:     "Test Reader",
	}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp authTokensResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "reader@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.Equal(t, int64(900), resp.Tokens.ExpiresIn)
	repo.AssertExpectations(t)
}

func TestRegister_ValidationError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: `{}`},
		{name: "bad email", body: `{"email": "not-an-email", "password": "Sup3rSecret", "name": "T"}`},
		{name: "short password", body: `{"email": "a@b.com", "password": "Ab1", "name": "T"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepo)
			router := authRouter(authTestHandler(repo))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	repo := new(mockUserRepo)
	router := authRouter(authTestHandler(repo))

	// Long enough to pass the DTO check, but no uppercase letter.
	body := RegisterRequest{
		Email:    "reader@example.com",
		Password: "alllowercase1",
		Name:     "Test Reader",
	}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(mockUserRepo)
	router := authRouter(authTestHandler(repo))

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "reader@example.com"))

	body := RegisterRequest{
		Email:    "reader@example.com",
		Password: "Sup3rSecret",
		Name:     "Test Reader",
	}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
}

// =============================================================================
// POST /api/v1/auth/login - Login
// =============================================================================

func TestLogin_Success(t *testing.T) {
	repo := new(mockUserRepo)
	router := authRouter(authTestHandler(repo))

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := sampleUser()
	user.PasswordHash = string(hash)
	repo.On("GetByEmail", mock.Anything, "reader@example.com").Return(user, nil)

	body := LoginRequest{Email: "reader@example.com", Password: "Sup3rSecret"}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp authTokensResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	repo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(mockUserRepo)
	router := authRouter(authTestHandler(repo))

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := sampleUser()
	user.PasswordHash = string(hash)
	repo.On("GetByEmail", mock.Anything, "reader@example.com").Return(user, nil)

	body := LoginRequest{Email: "reader@example.com", Password: "WrongPassw0rd"}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	assert.Equal(t, "invalid email or password", resp.Error.Message)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(mockUserRepo)
	router := authRouter(authTestHandler(repo))

	repo.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, apperrors.NotFound("user", "ghost@example.com"))

	body := LoginRequest{Email: "ghost@example.com", Password: "Sup3rSecret"}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	// Unknown accounts look the same as a bad password.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid email or password", resp.Error.Message)
}

// =============================================================================
// POST /api/v1/auth/refresh - Refresh
// =============================================================================

func TestRefresh_Success(t *testing.T) {
	repo := new(mockUserRepo)
	router := authRouter(authTestHandler(repo))

	user := sampleUser()
	refreshToken, err := authTestJWTManager().GenerateRefreshToken(user.ID)
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	body := RefreshRequest{RefreshToken: refreshToken}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
	repo.AssertExpectations(t)
}

func TestRefresh_InvalidToken(t *testing.T) {
	repo := new(mockUserRepo)
	router := authRouter(authTestHandler(repo))

	body := RefreshRequest{RefreshToken: "not-a-token"}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// =============================================================================
// GET /api/v1/auth/me - Profile
// =============================================================================

func TestProfile_Success(t *testing.T) {
	repo := new(mockUserRepo)
	router := authRouter(authTestHandler(repo))

	user := sampleUser()
	repo.On("GetByID", mock.Anything, testUserID).Return(user, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = asUser(req, testUserID, domain.RoleCustomer)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
	repo.AssertExpectations(t)
}

func TestProfile_NotFound(t *testing.T) {
	repo := new(mockUserRepo)
	router := authRouter(authTestHandler(repo))

	repo.On("GetByID", mock.Anything, testUserID).
		Return(nil, apperrors.NotFound("user", testUserID))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = asUser(req, testUserID, domain.RoleCustomer)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
