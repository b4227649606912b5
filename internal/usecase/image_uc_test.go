package usecase

import (
	"context"
	"testing"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/bozormedia/classifieds-service/internal/platform/logger"
	"github.com/bozormedia/classifieds-service/internal/port/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestImageUsecase_UploadImage(t *testing.T) {
	log := logger.NewLogger()
	ctx := context.Background()
	content := []byte("jpeg-bytes")

	t.Run("Success_FirstImageBecomesCover", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockFiles := new(MockFileStorage)
		uc := NewImageUsecase(mockListings, fakeUnitOfWork{}, mockFiles, log)

		draft, err := entity.NewListing("seller-1", "cat-1", true)
		require.NoError(t, err)
		draft.ID = "listing-1"

		mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Twice()
		mockFiles.On("Save", mock.Anything, content, "listings", "photo.jpg").
			Return(&storage.StoredFile{StorageKey: "listings/photo.jpg", PublicURL: "http://cdn/listings/photo.jpg"}, nil).Once()
		mockListings.On("Update", mock.Anything, draft).Return(nil).Once()

		img, err := uc.UploadImage(ctx, "listing-1", "seller-1", "photo.jpg", content)
		require.NoError(t, err)
		assert.NotEmpty(t, img.ID)
		assert.Equal(t, "listings/photo.jpg", img.StorageKey)
		assert.Equal(t, img.ID, draft.CoverImageID)
		mockFiles.AssertExpectations(t)
	})

	t.Run("OrphanCleanupWhenAttachFails", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockFiles := new(MockFileStorage)
		uc := NewImageUsecase(mockListings, fakeUnitOfWork{}, mockFiles, log)

		draft, err := entity.NewListing("seller-1", "cat-1", true)
		require.NoError(t, err)
		draft.ID = "listing-1"

		mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Twice()
		mockFiles.On("Save", mock.Anything, content, "listings", "photo.jpg").
			Return(&storage.StoredFile{StorageKey: "listings/photo.jpg", PublicURL: "http://cdn/listings/photo.jpg"}, nil).Once()
		mockListings.On("Update", mock.Anything, draft).Return(assert.AnError).Once()
		mockFiles.On("Delete", mock.Anything, "listings/photo.jpg").Return(nil).Once()

		_, err = uc.UploadImage(ctx, "listing-1", "seller-1", "photo.jpg", content)
		require.Error(t, err)
		mockFiles.AssertExpectations(t)
	})

	t.Run("NotOwner_NoUpload", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockFiles := new(MockFileStorage)
		uc := NewImageUsecase(mockListings, fakeUnitOfWork{}, mockFiles, log)

		draft, err := entity.NewListing("seller-1", "cat-1", true)
		require.NoError(t, err)
		draft.ID = "listing-1"
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Once()

		_, err = uc.UploadImage(ctx, "listing-1", "intruder", "photo.jpg", content)
		assert.ErrorIs(t, err, entity.ErrForbidden)
		mockFiles.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PublishedListingRejectsUpload", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockFiles := new(MockFileStorage)
		uc := NewImageUsecase(mockListings, fakeUnitOfWork{}, mockFiles, log)

		published := publishedListing(t, "listing-1", "seller-1")
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(published, nil).Once()

		_, err := uc.UploadImage(ctx, "listing-1", "seller-1", "photo.jpg", content)
		assert.ErrorIs(t, err, entity.ErrNotDraft)
	})

	t.Run("EmptyContent", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockFiles := new(MockFileStorage)
		uc := NewImageUsecase(mockListings, fakeUnitOfWork{}, mockFiles, log)

		_, err := uc.UploadImage(ctx, "listing-1", "seller-1", "photo.jpg", nil)
		assert.ErrorIs(t, err, entity.ErrValidation)
	})
}

func TestImageUsecase_RemoveImage(t *testing.T) {
	log := logger.NewLogger()
	ctx := context.Background()

	t.Run("Success_ObjectDeletedBestEffort", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockFiles := new(MockFileStorage)
		uc := NewImageUsecase(mockListings, fakeUnitOfWork{}, mockFiles, log)

		draft, err := entity.NewListing("seller-1", "cat-1", true)
		require.NoError(t, err)
		draft.ID = "listing-1"
		require.NoError(t, draft.AddImage(entity.Image{ID: "img-1", StorageKey: "listings/a.jpg"}))
		require.NoError(t, draft.AddImage(entity.Image{ID: "img-2", StorageKey: "listings/b.jpg"}))

		mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Once()
		mockListings.On("Update", mock.Anything, draft).Return(nil).Once()
		mockFiles.On("Delete", mock.Anything, "listings/a.jpg").Return(nil).Once()

		require.NoError(t, uc.RemoveImage(ctx, "listing-1", "seller-1", "img-1"))
		assert.Equal(t, "img-2", draft.CoverImageID, "cover falls back after removal")
		mockFiles.AssertExpectations(t)
	})

	t.Run("StorageDeleteFailureSwallowed", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockFiles := new(MockFileStorage)
		uc := NewImageUsecase(mockListings, fakeUnitOfWork{}, mockFiles, log)

		draft, err := entity.NewListing("seller-1", "cat-1", true)
		require.NoError(t, err)
		draft.ID = "listing-1"
		require.NoError(t, draft.AddImage(entity.Image{ID: "img-1", StorageKey: "listings/a.jpg"}))

		mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Once()
		mockListings.On("Update", mock.Anything, draft).Return(nil).Once()
		mockFiles.On("Delete", mock.Anything, "listings/a.jpg").Return(assert.AnError).Once()

		assert.NoError(t, uc.RemoveImage(ctx, "listing-1", "seller-1", "img-1"))
	})

	t.Run("UnknownImage", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockFiles := new(MockFileStorage)
		uc := NewImageUsecase(mockListings, fakeUnitOfWork{}, mockFiles, log)

		draft, err := entity.NewListing("seller-1", "cat-1", true)
		require.NoError(t, err)
		draft.ID = "listing-1"
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Once()

		assert.ErrorIs(t, uc.RemoveImage(ctx, "listing-1", "seller-1", "img-404"), entity.ErrImageNotFound)
		mockFiles.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
