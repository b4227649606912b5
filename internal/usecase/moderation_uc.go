package usecase

import (
	"context"
	"fmt"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/bozormedia/classifieds-service/internal/platform/logger"
	"github.com/bozormedia/classifieds-service/internal/platform/metrics"
	"github.com/bozormedia/classifieds-service/internal/port/cache"
	"github.com/bozormedia/classifieds-service/internal/port/directory"
	"github.com/bozormedia/classifieds-service/internal/port/repository"
	"go.uber.org/zap"
)

// EmailSender delivers notification emails. Delivery is best-effort.
type EmailSender interface {
	SendEmail(to []string, subject, body string) error
}

// ModerationUsecase serves the admin moderation queue. Approve is the only
// transition that publishes a listing; it goes through the same entity state
// machine as the seller-side lifecycle, so a draft that never completed
// SubmitForReview can never be published here.
type ModerationUsecase struct {
	listings  repository.ListingRepository
	uow       repository.UnitOfWork
	cache     cache.CacheRepository
	events    EventPublisher
	metrics   *metrics.MetricsManager
	mailer    EmailSender
	directory directory.UserDirectory
	logger    *logger.Logger
}

func NewModerationUsecase(
	listings repository.ListingRepository,
	uow repository.UnitOfWork,
	cacheRepo cache.CacheRepository,
	events EventPublisher,
	mm *metrics.MetricsManager,
	mailer EmailSender,
	dir directory.UserDirectory,
	log *logger.Logger,
) *ModerationUsecase {
	return &ModerationUsecase{
		listings:  listings,
		uow:       uow,
		cache:     cacheRepo,
		events:    events,
		metrics:   mm,
		mailer:    mailer,
		directory: dir,
		logger:    log.Named("ModerationUsecase"),
	}
}

// SearchPendingOutput is one page of the moderation queue.
type SearchPendingOutput struct {
	Items      []*repository.PendingListing
	TotalCount int64
}

// SearchPending pages through listings awaiting moderation, oldest submission
// first. Page and pageSize are clamped to at least 1; the admin path carries
// no upper page-size bound.
func (uc *ModerationUsecase) SearchPending(ctx context.Context, page, pageSize int) (*SearchPendingOutput, error) {
	ctx, span := tracer.Start(ctx, "ModerationUsecase.SearchPending")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	items, total, err := uc.listings.SearchPending(ctx, page, pageSize)
	if err != nil {
		uc.logger.Error("Failed to search pending listings", zap.Error(err))
		return nil, fmt.Errorf("ModerationUsecase.SearchPending: %w", err)
	}
	return &SearchPendingOutput{Items: items, TotalCount: total}, nil
}

// Approve publishes a listing from the moderation queue.
func (uc *ModerationUsecase) Approve(ctx context.Context, listingID string) error {
	ctx, span := tracer.Start(ctx, "ModerationUsecase.Approve")
	defer span.End()

	var listing *entity.Listing
	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		listing, err = uc.listings.GetByID(ctx, listingID)
		if err != nil {
			return translateRepoErr(err)
		}
		if err := listing.Approve(); err != nil {
			return err
		}
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		return err
	}

	uc.invalidate(ctx, listingID)
	if uc.metrics != nil {
		uc.metrics.ListingsPublishedTotal.Inc()
	}
	if uc.events != nil {
		if pubErr := uc.events.PublishListingPublished(ctx, listing); pubErr != nil {
			uc.logger.Warn("Failed to publish listing.published event", zap.Error(pubErr), zap.String("listing_id", listingID))
		}
	}
	uc.notifySeller(ctx, listing.SellerID,
		fmt.Sprintf("Your listing is live: %s", listing.Title),
		fmt.Sprintf("Your listing '%s' passed review and is now published.", listing.Title))

	uc.logger.Info("Listing approved", zap.String("listing_id", listingID))
	return nil
}

// Reject returns a listing to its seller as a draft, with the moderator's
// reason attached.
func (uc *ModerationUsecase) Reject(ctx context.Context, listingID, reason string) error {
	ctx, span := tracer.Start(ctx, "ModerationUsecase.Reject")
	defer span.End()

	var listing *entity.Listing
	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		listing, err = uc.listings.GetByID(ctx, listingID)
		if err != nil {
			return translateRepoErr(err)
		}
		if err := listing.Reject(reason); err != nil {
			return err
		}
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		return err
	}

	uc.invalidate(ctx, listingID)
	if uc.metrics != nil {
		uc.metrics.ListingsRejectedTotal.Inc()
	}
	if uc.events != nil {
		if pubErr := uc.events.PublishListingRejected(ctx, listingID, reason); pubErr != nil {
			uc.logger.Warn("Failed to publish listing.rejected event", zap.Error(pubErr), zap.String("listing_id", listingID))
		}
	}
	uc.notifySeller(ctx, listing.SellerID,
		fmt.Sprintf("Your listing was not approved: %s", listing.Title),
		fmt.Sprintf("Your listing '%s' was rejected: %s. You can edit it and submit again.", listing.Title, reason))

	uc.logger.Info("Listing rejected", zap.String("listing_id", listingID), zap.String("reason", reason))
	return nil
}

// Hide takes a published listing off the site without deleting it.
func (uc *ModerationUsecase) Hide(ctx context.Context, listingID string) error {
	ctx, span := tracer.Start(ctx, "ModerationUsecase.Hide")
	defer span.End()

	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		listing, err := uc.listings.GetByID(ctx, listingID)
		if err != nil {
			return translateRepoErr(err)
		}
		if err := listing.Hide(); err != nil {
			return err
		}
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx, listingID)
	uc.logger.Info("Listing hidden", zap.String("listing_id", listingID))
	return nil
}

// notifySeller emails the seller about a moderation outcome. Failures are
// logged and swallowed: the transition has already committed.
func (uc *ModerationUsecase) notifySeller(ctx context.Context, sellerID, subject, body string) {
	if uc.mailer == nil || uc.directory == nil {
		return
	}
	email, err := uc.directory.GetEmail(ctx, sellerID)
	if err != nil {
		uc.logger.Warn("Failed to resolve seller email", zap.Error(err), zap.String("seller_id", sellerID))
		return
	}
	if email == "" {
		return
	}
	if err := uc.mailer.SendEmail([]string{email}, subject, body); err != nil {
		uc.logger.Warn("Failed to send moderation email", zap.Error(err), zap.String("seller_id", sellerID))
	}
}

func (uc *ModerationUsecase) invalidate(ctx context.Context, listingID string) {
	if uc.cache == nil {
		return
	}
	key := listingCacheKey(listingID)
	if err := uc.cache.Delete(ctx, key); err != nil {
		uc.logger.Warn("Failed to invalidate listing cache", zap.String("key", key), zap.Error(err))
	}
}
