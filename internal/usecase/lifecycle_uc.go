package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/bozormedia/classifieds-service/internal/platform/logger"
	"github.com/bozormedia/classifieds-service/internal/platform/metrics"
	"github.com/bozormedia/classifieds-service/internal/port/cache"
	"github.com/bozormedia/classifieds-service/internal/port/repository"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/bozormedia/classifieds-service/internal/usecase")

const listingCacheTTL = 5 * time.Minute

func listingCacheKey(listingID string) string {
	return fmt.Sprintf("listing:%s", listingID)
}

// translateRepoErr maps repository sentinels onto the domain taxonomy.
func translateRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return entity.ErrNotFound
	}
	return err
}

// LifecycleUsecase implements seller-facing listing operations: draft editing,
// submission for review, promotions and terminal transitions.
type LifecycleUsecase struct {
	listings repository.ListingRepository
	uow      repository.UnitOfWork
	cache    cache.CacheRepository
	events   EventPublisher
	metrics  *metrics.MetricsManager
	logger   *logger.Logger

	bumpCooldown time.Duration
}

// NewLifecycleUsecase creates a LifecycleUsecase. bumpCooldown guards how
// often a published listing may be bumped (24h in production config).
func NewLifecycleUsecase(
	listings repository.ListingRepository,
	uow repository.UnitOfWork,
	cacheRepo cache.CacheRepository,
	events EventPublisher,
	mm *metrics.MetricsManager,
	log *logger.Logger,
	bumpCooldown time.Duration,
) *LifecycleUsecase {
	return &LifecycleUsecase{
		listings:     listings,
		uow:          uow,
		cache:        cacheRepo,
		events:       events,
		metrics:      mm,
		logger:       log.Named("LifecycleUsecase"),
		bumpCooldown: bumpCooldown,
	}
}

// CreateDraftInput holds the seller-provided fields of a new draft.
type CreateDraftInput struct {
	SellerID       string
	CategoryID     string
	CategoryIsLeaf bool
	Title          string
	Description    string
	Price          float64
	Currency       string
	City           string
	Region         string
	Condition      string
}

// CreateDraft creates a new draft listing owned by the seller.
func (uc *LifecycleUsecase) CreateDraft(ctx context.Context, input CreateDraftInput) (*entity.Listing, error) {
	ctx, span := tracer.Start(ctx, "LifecycleUsecase.CreateDraft")
	defer span.End()

	listing, err := entity.NewListing(input.SellerID, input.CategoryID, input.CategoryIsLeaf)
	if err != nil {
		return nil, err
	}
	listing.Title = input.Title
	listing.Description = input.Description
	listing.Price = input.Price
	listing.Currency = input.Currency
	listing.City = input.City
	listing.Region = input.Region
	listing.Condition = input.Condition

	id, err := uc.listings.Create(ctx, listing)
	if err != nil {
		uc.logger.Error("Failed to create draft listing", zap.Error(err), zap.String("seller_id", input.SellerID))
		return nil, fmt.Errorf("LifecycleUsecase.CreateDraft: %w", err)
	}
	listing.ID = id

	uc.logger.Info("Draft listing created", zap.String("listing_id", id), zap.String("seller_id", input.SellerID))
	return listing, nil
}

// UpdateDraftInput carries optional field updates for a draft. Nil fields are
// left untouched; a non-nil Attributes slice replaces the attribute values.
type UpdateDraftInput struct {
	ListingID   string
	SellerID    string
	Title       *string
	Description *string
	Price       *float64
	Currency    *string
	City        *string
	Region      *string
	Condition   *string
	Attributes  []entity.AttributeValue
}

// UpdateDraft applies structural edits. Only a draft owned by the caller can
// be edited.
func (uc *LifecycleUsecase) UpdateDraft(ctx context.Context, input UpdateDraftInput) (*entity.Listing, error) {
	ctx, span := tracer.Start(ctx, "LifecycleUsecase.UpdateDraft")
	defer span.End()

	var listing *entity.Listing
	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		listing, err = uc.loadOwned(ctx, input.ListingID, input.SellerID)
		if err != nil {
			return err
		}
		if listing.Status != entity.StatusDraft {
			return entity.ErrNotDraft
		}
		if input.Title != nil {
			listing.Title = *input.Title
		}
		if input.Description != nil {
			listing.Description = *input.Description
		}
		if input.Price != nil {
			listing.Price = *input.Price
		}
		if input.Currency != nil {
			listing.Currency = *input.Currency
		}
		if input.City != nil {
			listing.City = *input.City
		}
		if input.Region != nil {
			listing.Region = *input.Region
		}
		if input.Condition != nil {
			listing.Condition = *input.Condition
		}
		if input.Attributes != nil {
			if err := listing.SetAttributes(input.Attributes); err != nil {
				return err
			}
		}
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, input.ListingID)
	return listing, nil
}

// SubmitForReview moves a complete draft into the moderation queue.
func (uc *LifecycleUsecase) SubmitForReview(ctx context.Context, listingID, sellerID string) error {
	ctx, span := tracer.Start(ctx, "LifecycleUsecase.SubmitForReview")
	defer span.End()

	var listing *entity.Listing
	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		listing, err = uc.loadOwned(ctx, listingID, sellerID)
		if err != nil {
			return err
		}
		if err := listing.SubmitForReview(); err != nil {
			return err
		}
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		return err
	}

	uc.invalidate(ctx, listingID)
	if uc.metrics != nil {
		uc.metrics.ListingsSubmittedTotal.Inc()
	}
	if uc.events != nil {
		if pubErr := uc.events.PublishListingSubmitted(ctx, listing); pubErr != nil {
			uc.logger.Warn("Failed to publish listing.submitted event", zap.Error(pubErr), zap.String("listing_id", listingID))
		}
	}
	uc.logger.Info("Listing submitted for review", zap.String("listing_id", listingID))
	return nil
}

// Bump refreshes the recency of a published listing, at most once per
// cooldown window.
func (uc *LifecycleUsecase) Bump(ctx context.Context, listingID, sellerID string) error {
	ctx, span := tracer.Start(ctx, "LifecycleUsecase.Bump")
	defer span.End()

	now := time.Now().UTC()
	var listing *entity.Listing
	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		listing, err = uc.loadOwned(ctx, listingID, sellerID)
		if err != nil {
			return err
		}
		if err := listing.Bump(now, uc.bumpCooldown); err != nil {
			return err
		}
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		return err
	}

	uc.invalidate(ctx, listingID)
	if uc.metrics != nil {
		uc.metrics.ListingBumpsTotal.Inc()
	}
	if uc.events != nil {
		if pubErr := uc.events.PublishListingBumped(ctx, listingID, now); pubErr != nil {
			uc.logger.Warn("Failed to publish listing.bumped event", zap.Error(pubErr), zap.String("listing_id", listingID))
		}
	}
	return nil
}

// SetCoverImage selects one of the draft's images as the cover.
func (uc *LifecycleUsecase) SetCoverImage(ctx context.Context, listingID, sellerID, imageID string) error {
	ctx, span := tracer.Start(ctx, "LifecycleUsecase.SetCoverImage")
	defer span.End()

	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		listing, err := uc.loadOwned(ctx, listingID, sellerID)
		if err != nil {
			return err
		}
		if err := listing.SetCoverImage(imageID); err != nil {
			return err
		}
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx, listingID)
	return nil
}

// SetFeatured opens a featured window. Promotion is an administrative/paid
// action, routed through an admin-only surface, so there is no ownership
// check at this layer.
func (uc *LifecycleUsecase) SetFeatured(ctx context.Context, listingID string, until time.Time) error {
	ctx, span := tracer.Start(ctx, "LifecycleUsecase.SetFeatured")
	defer span.End()
	return uc.setPromotionWindow(ctx, listingID, until, true)
}

// SetUrgent opens an urgent window. Same authorization posture as SetFeatured.
func (uc *LifecycleUsecase) SetUrgent(ctx context.Context, listingID string, until time.Time) error {
	ctx, span := tracer.Start(ctx, "LifecycleUsecase.SetUrgent")
	defer span.End()
	return uc.setPromotionWindow(ctx, listingID, until, false)
}

func (uc *LifecycleUsecase) setPromotionWindow(ctx context.Context, listingID string, until time.Time, featured bool) error {
	now := time.Now().UTC()
	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		listing, err := uc.listings.GetByID(ctx, listingID)
		if err != nil {
			return translateRepoErr(err)
		}
		if featured {
			err = listing.SetFeatured(until, now)
		} else {
			err = listing.SetUrgent(until, now)
		}
		if err != nil {
			return err
		}
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx, listingID)
	return nil
}

// MarkSold transitions a published listing to Sold.
func (uc *LifecycleUsecase) MarkSold(ctx context.Context, listingID, sellerID string) error {
	ctx, span := tracer.Start(ctx, "LifecycleUsecase.MarkSold")
	defer span.End()

	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		listing, err := uc.loadOwned(ctx, listingID, sellerID)
		if err != nil {
			return err
		}
		if err := listing.MarkSold(); err != nil {
			return err
		}
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx, listingID)
	if uc.events != nil {
		if pubErr := uc.events.PublishListingSold(ctx, listingID); pubErr != nil {
			uc.logger.Warn("Failed to publish listing.sold event", zap.Error(pubErr), zap.String("listing_id", listingID))
		}
	}
	return nil
}

// Archive transitions a published listing to Archived.
func (uc *LifecycleUsecase) Archive(ctx context.Context, listingID, sellerID string) error {
	ctx, span := tracer.Start(ctx, "LifecycleUsecase.Archive")
	defer span.End()

	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		listing, err := uc.loadOwned(ctx, listingID, sellerID)
		if err != nil {
			return err
		}
		if err := listing.Archive(); err != nil {
			return err
		}
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx, listingID)
	return nil
}

// Delete soft-deletes the listing. The record is retained with DeletedAt set.
func (uc *LifecycleUsecase) Delete(ctx context.Context, listingID, sellerID string) error {
	ctx, span := tracer.Start(ctx, "LifecycleUsecase.Delete")
	defer span.End()

	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		listing, err := uc.loadOwned(ctx, listingID, sellerID)
		if err != nil {
			return err
		}
		listing.SoftDelete(time.Now().UTC())
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx, listingID)
	uc.logger.Info("Listing soft-deleted", zap.String("listing_id", listingID))
	return nil
}

// GetListing reads a listing, cache-aside.
func (uc *LifecycleUsecase) GetListing(ctx context.Context, listingID string) (*entity.Listing, error) {
	ctx, span := tracer.Start(ctx, "LifecycleUsecase.GetListing")
	defer span.End()

	if uc.cache != nil {
		key := listingCacheKey(listingID)
		cachedBytes, err := uc.cache.Get(ctx, key)
		if err == nil {
			var cached entity.Listing
			if unmarshalErr := json.Unmarshal(cachedBytes, &cached); unmarshalErr == nil {
				uc.logger.Debug("Listing fetched from cache", zap.String("key", key))
				return &cached, nil
			}
			if delErr := uc.cache.Delete(ctx, key); delErr != nil {
				uc.logger.Warn("Failed to delete corrupted cache entry", zap.String("key", key), zap.Error(delErr))
			}
		} else if !errors.Is(err, cache.ErrNotFound) {
			uc.logger.Warn("Failed to get listing from cache", zap.Error(err), zap.String("key", key))
		}
	}

	listing, err := uc.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, translateRepoErr(err)
	}

	if uc.cache != nil {
		if listingBytes, marshalErr := json.Marshal(listing); marshalErr == nil {
			key := listingCacheKey(listingID)
			if setErr := uc.cache.Set(ctx, key, listingBytes, listingCacheTTL); setErr != nil {
				uc.logger.Warn("Failed to set listing in cache", zap.Error(setErr), zap.String("key", key))
			}
		}
	}
	return listing, nil
}

// SearchListingsOutput is one result page of the public search.
type SearchListingsOutput struct {
	Listings   []*entity.Listing
	TotalCount int64
}

// SearchListings pages through published listings. Unlike the moderation
// queue, the public path clamps the page size to 100.
func (uc *LifecycleUsecase) SearchListings(ctx context.Context, filter repository.ListingSearchFilter) (*SearchListingsOutput, error) {
	ctx, span := tracer.Start(ctx, "LifecycleUsecase.SearchListings")
	defer span.End()

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	} else if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	listings, total, err := uc.listings.Search(ctx, filter)
	if err != nil {
		uc.logger.Error("Failed to search listings", zap.Error(err))
		return nil, fmt.Errorf("LifecycleUsecase.SearchListings: %w", err)
	}
	return &SearchListingsOutput{Listings: listings, TotalCount: total}, nil
}

// loadOwned fetches a live listing and verifies ownership.
func (uc *LifecycleUsecase) loadOwned(ctx context.Context, listingID, sellerID string) (*entity.Listing, error) {
	listing, err := uc.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	if listing.IsDeleted() {
		return nil, entity.ErrNotFound
	}
	if !listing.IsOwnedBy(sellerID) {
		uc.logger.Warn("Listing access forbidden",
			zap.String("listing_id", listingID),
			zap.String("owner_id", listing.SellerID),
			zap.String("acting_user_id", sellerID))
		return nil, entity.ErrForbidden
	}
	return listing, nil
}

func (uc *LifecycleUsecase) invalidate(ctx context.Context, listingID string) {
	if uc.cache == nil {
		return
	}
	key := listingCacheKey(listingID)
	if err := uc.cache.Delete(ctx, key); err != nil {
		uc.logger.Warn("Failed to invalidate listing cache", zap.String("key", key), zap.Error(err))
	}
}
