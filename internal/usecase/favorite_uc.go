package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/bozormedia/classifieds-service/internal/platform/logger"
	"github.com/bozormedia/classifieds-service/internal/platform/metrics"
	"github.com/bozormedia/classifieds-service/internal/port/repository"
	"go.uber.org/zap"
)

// FavoriteUsecase toggles the favorite relationship. Add and Remove are
// idempotent: repeating either returns success with the same observable
// state, never Conflict or NotFound.
type FavoriteUsecase struct {
	favorites repository.FavoriteRepository
	listings  repository.ListingRepository
	uow       repository.UnitOfWork
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func NewFavoriteUsecase(
	favorites repository.FavoriteRepository,
	listings repository.ListingRepository,
	uow repository.UnitOfWork,
	mm *metrics.MetricsManager,
	log *logger.Logger,
) *FavoriteUsecase {
	return &FavoriteUsecase{
		favorites: favorites,
		listings:  listings,
		uow:       uow,
		metrics:   mm,
		logger:    log.Named("FavoriteUsecase"),
	}
}

// Add favorites a published listing. An already-existing favorite is success,
// not an error.
func (uc *FavoriteUsecase) Add(ctx context.Context, userID, listingID string) error {
	ctx, span := tracer.Start(ctx, "FavoriteUsecase.Add")
	defer span.End()

	if userID == "" || listingID == "" {
		return fmt.Errorf("%w: userID and listingID are required", entity.ErrValidation)
	}

	created := false
	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		published, err := uc.listings.IsPublished(ctx, listingID)
		if err != nil {
			return translateRepoErr(err)
		}
		if !published {
			return entity.ErrListingNotPublished
		}

		_, err = uc.favorites.Get(ctx, userID, listingID)
		if err == nil {
			// Already in desired state.
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		addErr := uc.favorites.Add(ctx, entity.NewFavorite(userID, listingID))
		if errors.Is(addErr, repository.ErrDuplicateKey) {
			// Concurrent add won the race; same observable result.
			return nil
		}
		if addErr == nil {
			created = true
		}
		return addErr
	})
	if err != nil {
		return err
	}

	if created {
		if uc.metrics != nil {
			uc.metrics.FavoritesAddedTotal.Inc()
		}
		uc.logger.Info("Favorite added", zap.String("user_id", userID), zap.String("listing_id", listingID))
	}
	return nil
}

// Remove unfavorites a listing. Removing an absent favorite is success; there
// is no publication-state precondition on removal.
func (uc *FavoriteUsecase) Remove(ctx context.Context, userID, listingID string) error {
	ctx, span := tracer.Start(ctx, "FavoriteUsecase.Remove")
	defer span.End()

	if userID == "" || listingID == "" {
		return fmt.Errorf("%w: userID and listingID are required", entity.ErrValidation)
	}

	removed := true
	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		removeErr := uc.favorites.Remove(ctx, userID, listingID)
		if errors.Is(removeErr, repository.ErrNotFound) {
			removed = false
			return nil
		}
		return removeErr
	})
	if err != nil {
		return err
	}

	if removed {
		if uc.metrics != nil {
			uc.metrics.FavoritesRemovedTotal.Inc()
		}
		uc.logger.Info("Favorite removed", zap.String("user_id", userID), zap.String("listing_id", listingID))
	}
	return nil
}

// ListByUser returns the user's favorites, newest first.
func (uc *FavoriteUsecase) ListByUser(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	ctx, span := tracer.Start(ctx, "FavoriteUsecase.ListByUser")
	defer span.End()

	favorites, err := uc.favorites.FindByUserID(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to list favorites", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("FavoriteUsecase.ListByUser: %w", err)
	}
	return favorites, nil
}
