package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/bozormedia/classifieds-service/internal/platform/logger"
	"github.com/bozormedia/classifieds-service/internal/port/cache"
	"github.com/bozormedia/classifieds-service/internal/port/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBumpCooldown = 24 * time.Hour

func publishableDraft(t *testing.T, id, sellerID string) *entity.Listing {
	t.Helper()
	l, err := entity.NewListing(sellerID, "cat-1", true)
	require.NoError(t, err)
	l.ID = id
	l.Title = "Mountain bike"
	l.Description = "Barely used"
	l.Price = 300
	l.Currency = "USD"
	l.City = "Tashkent"
	l.Region = "Tashkent"
	require.NoError(t, l.AddImage(entity.Image{ID: "img-1"}))
	return l
}

func publishedListing(t *testing.T, id, sellerID string) *entity.Listing {
	t.Helper()
	l := publishableDraft(t, id, sellerID)
	require.NoError(t, l.SubmitForReview())
	require.NoError(t, l.Approve())
	return l
}

func TestLifecycleUsecase_CreateDraft(t *testing.T) {
	log := logger.NewLogger()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)
		mockListings.On("Create", mock.Anything, mock.AnythingOfType("*entity.Listing")).Return("listing-1", nil).Once()

		listing, err := uc.CreateDraft(ctx, CreateDraftInput{
			SellerID:   "seller-1",
			CategoryID: "cat-1",
			Title:      "Sofa",
			Price:      150,
			Currency:   "USD",
		})

		require.NoError(t, err)
		assert.Equal(t, "listing-1", listing.ID)
		assert.Equal(t, entity.StatusDraft, listing.Status)
		assert.Equal(t, "Sofa", listing.Title)
		mockListings.AssertExpectations(t)
	})

	t.Run("MissingSeller", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

		_, err := uc.CreateDraft(ctx, CreateDraftInput{CategoryID: "cat-1"})
		assert.ErrorIs(t, err, entity.ErrValidation)
		mockListings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLifecycleUsecase_UpdateDraft(t *testing.T) {
	log := logger.NewLogger()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockCache := new(MockCacheRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, mockCache, nil, nil, log, testBumpCooldown)

		draft := publishableDraft(t, "listing-1", "seller-1")
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Once()
		mockListings.On("Update", mock.Anything, draft).Return(nil).Once()
		mockCache.On("Delete", mock.Anything, listingCacheKey("listing-1")).Return(nil).Once()

		newTitle := "Mountain bike, negotiable"
		newPrice := 280.0
		updated, err := uc.UpdateDraft(ctx, UpdateDraftInput{
			ListingID: "listing-1",
			SellerID:  "seller-1",
			Title:     &newTitle,
			Price:     &newPrice,
		})

		require.NoError(t, err)
		assert.Equal(t, newTitle, updated.Title)
		assert.Equal(t, newPrice, updated.Price)
		assert.Equal(t, "Barely used", updated.Description, "nil fields untouched")
		mockListings.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("NotOwner", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

		draft := publishableDraft(t, "listing-1", "seller-1")
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Once()

		_, err := uc.UpdateDraft(ctx, UpdateDraftInput{ListingID: "listing-1", SellerID: "intruder"})
		assert.ErrorIs(t, err, entity.ErrForbidden)
		mockListings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("NotADraft", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

		published := publishedListing(t, "listing-1", "seller-1")
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(published, nil).Once()

		_, err := uc.UpdateDraft(ctx, UpdateDraftInput{ListingID: "listing-1", SellerID: "seller-1"})
		assert.ErrorIs(t, err, entity.ErrNotDraft)
	})

	t.Run("SoftDeletedLooksMissing", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

		draft := publishableDraft(t, "listing-1", "seller-1")
		draft.SoftDelete(time.Now().UTC())
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Once()

		_, err := uc.UpdateDraft(ctx, UpdateDraftInput{ListingID: "listing-1", SellerID: "seller-1"})
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})
}

func TestLifecycleUsecase_SubmitForReview(t *testing.T) {
	log := logger.NewLogger()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockCache := new(MockCacheRepository)
		mockEvents := new(MockEventPublisher)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, mockCache, mockEvents, nil, log, testBumpCooldown)

		draft := publishableDraft(t, "listing-1", "seller-1")
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Once()
		mockListings.On("Update", mock.Anything, draft).Return(nil).Once()
		mockCache.On("Delete", mock.Anything, listingCacheKey("listing-1")).Return(nil).Once()
		mockEvents.On("PublishListingSubmitted", mock.Anything, draft).Return(nil).Once()

		require.NoError(t, uc.SubmitForReview(ctx, "listing-1", "seller-1"))
		assert.Equal(t, entity.StatusPendingReview, draft.Status)
		mockListings.AssertExpectations(t)
		mockEvents.AssertExpectations(t)
	})

	t.Run("IncompleteDraft", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

		incomplete, err := entity.NewListing("seller-1", "cat-1", true)
		require.NoError(t, err)
		incomplete.ID = "listing-1"
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(incomplete, nil).Once()

		err = uc.SubmitForReview(ctx, "listing-1", "seller-1")
		assert.ErrorIs(t, err, entity.ErrInvalidState)
		assert.Equal(t, entity.StatusDraft, incomplete.Status)
		mockListings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("EventFailureDoesNotFailOperation", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockEvents := new(MockEventPublisher)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, mockEvents, nil, log, testBumpCooldown)

		draft := publishableDraft(t, "listing-1", "seller-1")
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Once()
		mockListings.On("Update", mock.Anything, draft).Return(nil).Once()
		mockEvents.On("PublishListingSubmitted", mock.Anything, draft).Return(assert.AnError).Once()

		assert.NoError(t, uc.SubmitForReview(ctx, "listing-1", "seller-1"))
		mockEvents.AssertExpectations(t)
	})
}

func TestLifecycleUsecase_Bump(t *testing.T) {
	log := logger.NewLogger()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockEvents := new(MockEventPublisher)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, mockEvents, nil, log, testBumpCooldown)

		published := publishedListing(t, "listing-1", "seller-1")
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(published, nil).Once()
		mockListings.On("Update", mock.Anything, published).Return(nil).Once()
		mockEvents.On("PublishListingBumped", mock.Anything, "listing-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

		require.NoError(t, uc.Bump(ctx, "listing-1", "seller-1"))
		require.NotNil(t, published.BumpedAt)
		mockEvents.AssertExpectations(t)
	})

	t.Run("CooldownActive", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

		published := publishedListing(t, "listing-1", "seller-1")
		recent := time.Now().UTC().Add(-time.Hour)
		published.BumpedAt = &recent
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(published, nil).Once()

		err := uc.Bump(ctx, "listing-1", "seller-1")
		assert.ErrorIs(t, err, entity.ErrBumpNotAllowed)
		mockListings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("NotPublished", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

		draft := publishableDraft(t, "listing-1", "seller-1")
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Once()

		assert.ErrorIs(t, uc.Bump(ctx, "listing-1", "seller-1"), entity.ErrBumpNotAllowed)
	})
}

func TestLifecycleUsecase_GetListing_CacheAside(t *testing.T) {
	log := logger.NewLogger()
	ctx := context.Background()

	t.Run("CacheHit", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockCache := new(MockCacheRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, mockCache, nil, nil, log, testBumpCooldown)

		cached := publishedListing(t, "listing-1", "seller-1")
		cachedBytes, err := json.Marshal(cached)
		require.NoError(t, err)
		mockCache.On("Get", mock.Anything, listingCacheKey("listing-1")).Return(cachedBytes, nil).Once()

		got, err := uc.GetListing(ctx, "listing-1")
		require.NoError(t, err)
		assert.Equal(t, "listing-1", got.ID)
		mockListings.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("CacheMissFallsThrough", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockCache := new(MockCacheRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, mockCache, nil, nil, log, testBumpCooldown)

		published := publishedListing(t, "listing-1", "seller-1")
		mockCache.On("Get", mock.Anything, listingCacheKey("listing-1")).Return(nil, cache.ErrNotFound).Once()
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(published, nil).Once()
		mockCache.On("Set", mock.Anything, listingCacheKey("listing-1"), mock.Anything, listingCacheTTL).Return(nil).Once()

		got, err := uc.GetListing(ctx, "listing-1")
		require.NoError(t, err)
		assert.Equal(t, "listing-1", got.ID)
		mockCache.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

		mockListings.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound).Once()

		_, err := uc.GetListing(ctx, "missing")
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})
}

func TestLifecycleUsecase_SearchListings_ClampsPageSize(t *testing.T) {
	log := logger.NewLogger()
	mockListings := new(MockListingRepository)
	uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

	ctx := context.Background()
	expected := repository.ListingSearchFilter{Page: 1, PageSize: 100}
	mockListings.On("Search", mock.Anything, expected).Return([]*entity.Listing{}, int64(0), nil).Once()

	_, err := uc.SearchListings(ctx, repository.ListingSearchFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	mockListings.AssertExpectations(t)
}

func TestLifecycleUsecase_MarkSoldAndArchive(t *testing.T) {
	log := logger.NewLogger()
	ctx := context.Background()

	t.Run("MarkSold", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		mockEvents := new(MockEventPublisher)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, mockEvents, nil, log, testBumpCooldown)

		published := publishedListing(t, "listing-1", "seller-1")
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(published, nil).Once()
		mockListings.On("Update", mock.Anything, published).Return(nil).Once()
		mockEvents.On("PublishListingSold", mock.Anything, "listing-1").Return(nil).Once()

		require.NoError(t, uc.MarkSold(ctx, "listing-1", "seller-1"))
		assert.Equal(t, entity.StatusSold, published.Status)
		mockEvents.AssertExpectations(t)
	})

	t.Run("ArchiveSoldListingFails", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

		published := publishedListing(t, "listing-1", "seller-1")
		require.NoError(t, published.MarkSold())
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(published, nil).Once()

		assert.ErrorIs(t, uc.Archive(ctx, "listing-1", "seller-1"), entity.ErrNotPublished)
	})
}

func TestLifecycleUsecase_PromotionWindows(t *testing.T) {
	log := logger.NewLogger()
	ctx := context.Background()

	t.Run("SetFeatured", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

		published := publishedListing(t, "listing-1", "seller-1")
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(published, nil).Once()
		mockListings.On("Update", mock.Anything, published).Return(nil).Once()

		until := time.Now().UTC().Add(72 * time.Hour)
		require.NoError(t, uc.SetFeatured(ctx, "listing-1", until))
		require.NotNil(t, published.FeaturedUntil)
		assert.Equal(t, until, *published.FeaturedUntil)
	})

	t.Run("PastWindowRejected", func(t *testing.T) {
		mockListings := new(MockListingRepository)
		uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

		published := publishedListing(t, "listing-1", "seller-1")
		mockListings.On("GetByID", mock.Anything, "listing-1").Return(published, nil).Once()

		err := uc.SetUrgent(ctx, "listing-1", time.Now().UTC().Add(-time.Hour))
		assert.ErrorIs(t, err, entity.ErrValidation)
		mockListings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestLifecycleUsecase_Delete(t *testing.T) {
	log := logger.NewLogger()
	mockListings := new(MockListingRepository)
	uc := NewLifecycleUsecase(mockListings, fakeUnitOfWork{}, nil, nil, nil, log, testBumpCooldown)

	ctx := context.Background()
	draft := publishableDraft(t, "listing-1", "seller-1")
	mockListings.On("GetByID", mock.Anything, "listing-1").Return(draft, nil).Once()
	mockListings.On("Update", mock.Anything, draft).Return(nil).Once()

	require.NoError(t, uc.Delete(ctx, "listing-1", "seller-1"))
	assert.True(t, draft.IsDeleted())
}
