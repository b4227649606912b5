package entity

import "time"

// Favorite is the many-to-many relationship between a user and a listing.
// At most one favorite exists per (user, listing) pair; add and remove are
// idempotent at the usecase level.
type Favorite struct {
	UserID    string
	ListingID string
	CreatedAt time.Time
}

// NewFavorite creates the relationship record.
func NewFavorite(userID, listingID string) *Favorite {
	return &Favorite{
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: time.Now().UTC(),
	}
}
