package usecase

import (
	"context"
	"time"

	"github.com/bozormedia/classifieds-service/internal/entity"
)

// EventPublisher emits domain events after a successful commit. Publishing is
// best-effort: a failed publish is logged and never fails the operation.
type EventPublisher interface {
	PublishListingSubmitted(ctx context.Context, listing *entity.Listing) error
	PublishListingPublished(ctx context.Context, listing *entity.Listing) error
	PublishListingRejected(ctx context.Context, listingID, reason string) error
	PublishListingBumped(ctx context.Context, listingID string, bumpedAt time.Time) error
	PublishListingSold(ctx context.Context, listingID string) error
	PublishMessageCreated(ctx context.Context, msg *entity.Message) error
}
