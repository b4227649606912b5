package repository

import (
	"context"
	"errors"

	"github.com/bozormedia/classifieds-service/internal/entity"
)

// ErrNotFound is returned by repositories when no document matches.
// Usecases translate it into the domain taxonomy.
var ErrNotFound = errors.New("not found")

// ErrDuplicateKey is returned when a unique index rejects a write. The
// idempotent usecases treat it as already-in-desired-state.
var ErrDuplicateKey = errors.New("duplicate key")

// ListingSearchFilter narrows public listing search.
type ListingSearchFilter struct {
	Query    string
	MinPrice float64
	MaxPrice float64
	Page     int
	PageSize int
}

// PendingListing is a denormalized moderation-queue row.
type PendingListing struct {
	Listing    *entity.Listing
	ImageCount int
}

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) (string, error)
	Update(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	// IsPublished reports publication state without loading the aggregate.
	IsPublished(ctx context.Context, id string) (bool, error)
	// Search returns one page of published listings plus the total count.
	Search(ctx context.Context, filter ListingSearchFilter) ([]*entity.Listing, int64, error)
	// SearchPending returns one stable-ordered page of the moderation queue
	// (oldest submission first) plus the total count.
	SearchPending(ctx context.Context, page, pageSize int) ([]*PendingListing, int64, error)
}
