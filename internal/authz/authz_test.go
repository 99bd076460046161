package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VVikasKumar01/BookStore/internal/domain"
	"github.com/VVikasKumar01/BookStore/pkg/errors"
)

func TestCanEditReview(t *testing.T) {
	review := &domain.Review{ID: "r1", UserID: "owner"}

	tests := []struct {
		name    string
		actor   Actor
		wantErr bool
	}{
		{name: "owner can edit", actor: Actor{ID: "owner", Role: domain.RoleCustomer}},
		{name: "other user cannot edit", actor: Actor{ID: "stranger", Role: domain.RoleCustomer}, wantErr: true},
		{name: "admin cannot edit others reviews", actor: Actor{ID: "admin", Role: domain.RoleAdmin}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanEditReview(tt.actor, review)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrForbidden)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCanDeleteReview(t *testing.T) {
	review := &domain.Review{ID: "r1", UserID: "owner"}

	tests := []struct {
		name    string
		actor   Actor
		wantErr bool
	}{
		{name: "owner can delete", actor: Actor{ID: "owner", Role: domain.RoleCustomer}},
		{name: "admin can delete", actor: Actor{ID: "admin", Role: domain.RoleAdmin}},
		{name: "other user cannot delete", actor: Actor{ID: "stranger", Role: domain.RoleCustomer}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanDeleteReview(tt.actor, review)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrForbidden)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestActorIsAdmin(t *testing.T) {
	assert.True(t, Actor{Role: domain.RoleAdmin}.IsAdmin())
	assert.False(t, Actor{Role: domain.RoleCustomer}.IsAdmin())
}
