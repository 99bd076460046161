package domain

import "time"

// Review statuses. Reviews are auto-approved today; the pending/rejected
// states exist so a moderation queue can be added without a schema change.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// Review field limits.
const (
	MaxReviewTitleLen   = 100
	MaxReviewCommentLen = 1000
)

// Review represents a rating+comment record tied to one user and one book.
// At most one review exists per (user, book) pair; the database enforces
// this with a unique index.
type Review struct {
	ID       string `json:"id"`
	BookID   string `json:"book_id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	Rating   int    `json:"rating"`
	Title    string `json:"title"`
	Comment  string `json:"comment"`

	// VerifiedPurchase is always false today.
	// TODO: check the user's order history once the order service exposes it.
	VerifiedPurchase bool `json:"verified_purchase"`

	Status        string    `json:"status"`
	HelpfulVoters []string  `json:"helpful_voters"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsApproved reports whether the review counts toward the book's rating summary.
func (r *Review) IsApproved() bool {
	return r.Status == ReviewStatusApproved
}

// HelpfulCount returns the number of users who marked the review helpful.
func (r *Review) HelpfulCount() int {
	return len(r.HelpfulVoters)
}

// MarkedHelpfulBy reports whether the given user has marked the review helpful.
func (r *Review) MarkedHelpfulBy(userID string) bool {
	for _, v := range r.HelpfulVoters {
		if v == userID {
			return true
		}
	}
	return false
}

// ReviewSort enumerates the supported review list orderings. All orderings
// break ties by creation time, newest first.
type ReviewSort string

const (
	SortLatest     ReviewSort = "latest"
	SortHelpful    ReviewSort = "helpful"
	SortRatingHigh ReviewSort = "rating-high"
	SortRatingLow  ReviewSort = "rating-low"
)

// ParseReviewSort maps a query-string value to a ReviewSort. Unknown or empty
// values fall back to latest.
func ParseReviewSort(s string) ReviewSort {
	switch ReviewSort(s) {
	case SortHelpful, SortRatingHigh, SortRatingLow:
		return ReviewSort(s)
	default:
		return SortLatest
	}
}
