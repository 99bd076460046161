package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler(t *testing.T, wantUserID, wantRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantUserID, UserIDFromContext(r.Context()))
		assert.Equal(t, wantRole, RoleFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidToken(t *testing.T) {
	validate := func(token string) (*Claims, error) {
		assert.Equal(t, "tok-1", token)
		return &Claims{UserID: "u-1", Role: "customer"}, nil
	}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer tok-1")

	Auth(validate)(okHandler(t, "u-1", "customer")).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	Auth(func(string) (*Claims, error) { return nil, nil })(next).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuth_MalformedHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Basic abc123")

	Auth(func(string) (*Claims, error) { return nil, nil })(http.NotFoundHandler()).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer expired")

	validate := func(string) (*Claims, error) { return nil, errors.New("expired") }
	Auth(validate)(http.NotFoundHandler()).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		required []string
		want     int
	}{
		{"admin allowed", "admin", []string{"admin"}, http.StatusOK},
		{"customer denied admin route", "customer", []string{"admin"}, http.StatusForbidden},
		{"no role denied", "", []string{"admin"}, http.StatusForbidden},
		{"one of several", "customer", []string{"admin", "customer"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r := httptest.NewRequest("DELETE", "/books/1", nil)
			r = r.WithContext(WithActor(r.Context(), "u-1", tt.role))

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			RequireRole(tt.required...)(next).ServeHTTP(rec, r)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestContextAccessors_Empty(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, UserIDFromContext(r.Context()))
	assert.Empty(t, RoleFromContext(r.Context()))
}
