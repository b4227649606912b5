package repository

import (
	"context"

	"github.com/bozormedia/classifieds-service/internal/entity"
)

type FavoriteRepository interface {
	// Get returns the favorite for the pair, or ErrNotFound.
	Get(ctx context.Context, userID, listingID string) (*entity.Favorite, error)
	// Add inserts the pair. A unique index on (user_id, listing_id) makes a
	// concurrent duplicate surface as ErrDuplicateKey.
	Add(ctx context.Context, favorite *entity.Favorite) error
	// Remove deletes the pair; removing an absent pair returns ErrNotFound.
	Remove(ctx context.Context, userID, listingID string) error
	FindByUserID(ctx context.Context, userID string) ([]*entity.Favorite, error)
}
