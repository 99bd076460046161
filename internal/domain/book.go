package domain

import "time"

// Book represents a catalog book with its denormalized rating summary.
type Book struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Author      string        `json:"author"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	PriceCents  int64         `json:"price_cents"`
	Stock       int           `json:"stock"`
	ImageURL    string        `json:"image_url"`
	Ratings     RatingSummary `json:"ratings"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
