package usecase

import (
	"context"
	"fmt"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/bozormedia/classifieds-service/internal/platform/logger"
	"github.com/bozormedia/classifieds-service/internal/port/repository"
	"github.com/bozormedia/classifieds-service/internal/port/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const imageFolder = "listings"

// ImageUsecase manages listing image uploads. Images live in object storage;
// the listing document keeps the key and public URL.
type ImageUsecase struct {
	listings repository.ListingRepository
	uow      repository.UnitOfWork
	files    storage.FileStorage
	logger   *logger.Logger
}

func NewImageUsecase(listings repository.ListingRepository, uow repository.UnitOfWork, files storage.FileStorage, log *logger.Logger) *ImageUsecase {
	return &ImageUsecase{
		listings: listings,
		uow:      uow,
		files:    files,
		logger:   log.Named("ImageUsecase"),
	}
}

// UploadImage stores the file and attaches it to a draft listing. The first
// image becomes the cover.
func (uc *ImageUsecase) UploadImage(ctx context.Context, listingID, sellerID, filename string, content []byte) (*entity.Image, error) {
	ctx, span := tracer.Start(ctx, "ImageUsecase.UploadImage")
	defer span.End()

	if len(content) == 0 {
		return nil, fmt.Errorf("%w: image content cannot be empty", entity.ErrValidation)
	}

	// Verify ownership and state before paying for the upload.
	listing, err := uc.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	if !listing.IsOwnedBy(sellerID) {
		return nil, entity.ErrForbidden
	}
	if listing.Status != entity.StatusDraft {
		return nil, entity.ErrNotDraft
	}

	stored, err := uc.files.Save(ctx, content, imageFolder, filename)
	if err != nil {
		uc.logger.Error("Failed to store listing image", zap.Error(err), zap.String("listing_id", listingID))
		return nil, fmt.Errorf("ImageUsecase.UploadImage: %w", err)
	}

	img := entity.Image{
		ID:         uuid.New().String(),
		StorageKey: stored.StorageKey,
		URL:        stored.PublicURL,
	}

	err = uc.uow.Execute(ctx, func(ctx context.Context) error {
		listing, err := uc.listings.GetByID(ctx, listingID)
		if err != nil {
			return translateRepoErr(err)
		}
		if !listing.IsOwnedBy(sellerID) {
			return entity.ErrForbidden
		}
		if err := listing.AddImage(img); err != nil {
			return err
		}
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		// The listing write failed; do not leak the orphaned object.
		if delErr := uc.files.Delete(ctx, stored.StorageKey); delErr != nil {
			uc.logger.Warn("Failed to delete orphaned image object", zap.Error(delErr), zap.String("storage_key", stored.StorageKey))
		}
		return nil, err
	}

	uc.logger.Info("Listing image uploaded", zap.String("listing_id", listingID), zap.String("image_id", img.ID))
	return &img, nil
}

// RemoveImage detaches an image from a draft listing and deletes the stored
// object best-effort.
func (uc *ImageUsecase) RemoveImage(ctx context.Context, listingID, sellerID, imageID string) error {
	ctx, span := tracer.Start(ctx, "ImageUsecase.RemoveImage")
	defer span.End()

	var removed *entity.Image
	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		listing, err := uc.listings.GetByID(ctx, listingID)
		if err != nil {
			return translateRepoErr(err)
		}
		if !listing.IsOwnedBy(sellerID) {
			return entity.ErrForbidden
		}
		removed, err = listing.RemoveImage(imageID)
		if err != nil {
			return err
		}
		return uc.listings.Update(ctx, listing)
	})
	if err != nil {
		return err
	}

	if delErr := uc.files.Delete(ctx, removed.StorageKey); delErr != nil {
		uc.logger.Warn("Failed to delete image object after detach",
			zap.Error(delErr), zap.String("storage_key", removed.StorageKey))
	}
	return nil
}
