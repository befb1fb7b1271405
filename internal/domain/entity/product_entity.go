package entity

import "time"

// Product belongs to exactly one user. BannerImage holds the blob-store
// object key (e.g. "products/<uuid>.png"), never a full URL; URL expansion
// happens at the application layer.
type Product struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Cost        *float64
	BannerImage string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
