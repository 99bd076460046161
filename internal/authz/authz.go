// Package authz centralizes ownership and role checks for review mutations.
package authz

import (
	"github.com/VVikasKumar01/BookStore/internal/domain"
	"github.com/VVikasKumar01/BookStore/pkg/errors"
)

// Actor identifies the authenticated caller performing an operation.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// CanEditReview allows only the review's author to edit it. Admins do not
// get edit rights over other users' reviews.
func CanEditReview(actor Actor, review *domain.Review) error {
	if actor.ID != review.UserID {
		return errors.Forbidden("you can only edit your own reviews")
	}
	return nil
}

// CanDeleteReview allows the review's author or an admin to delete it.
func CanDeleteReview(actor Actor, review *domain.Review) error {
	if actor.ID == review.UserID || actor.IsAdmin() {
		return nil
	}
	return errors.Forbidden("you can only delete your own reviews")
}
