package usecase

import (
	"context"
	"time"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/bozormedia/classifieds-service/internal/port/directory"
	"github.com/bozormedia/classifieds-service/internal/port/repository"
	"github.com/bozormedia/classifieds-service/internal/port/storage"
	"github.com/stretchr/testify/mock"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) Create(ctx context.Context, listing *entity.Listing) (string, error) {
	args := m.Called(ctx, listing)
	return args.String(0), args.Error(1)
}
func (m *MockListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}
func (m *MockListingRepository) IsPublished(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockListingRepository) Search(ctx context.Context, filter repository.ListingSearchFilter) ([]*entity.Listing, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*entity.Listing), args.Get(1).(int64), args.Error(2)
}
func (m *MockListingRepository) SearchPending(ctx context.Context, page, pageSize int) ([]*repository.PendingListing, int64, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*repository.PendingListing), args.Get(1).(int64), args.Error(2)
}

type MockConversationRepository struct{ mock.Mock }

func (m *MockConversationRepository) Create(ctx context.Context, conv *entity.Conversation) (string, error) {
	args := m.Called(ctx, conv)
	return args.String(0), args.Error(1)
}
func (m *MockConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Conversation), args.Error(1)
}
func (m *MockConversationRepository) GetByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*entity.Conversation, error) {
	args := m.Called(ctx, listingID, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Conversation), args.Error(1)
}
func (m *MockConversationRepository) GetInbox(ctx context.Context, userID string, page, pageSize int) ([]*repository.InboxRow, int64, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*repository.InboxRow), args.Get(1).(int64), args.Error(2)
}
func (m *MockConversationRepository) MarkRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	args := m.Called(ctx, conversationID, userID, at)
	return args.Error(0)
}
func (m *MockConversationRepository) SetBlocked(ctx context.Context, conversationID string, blocked bool) error {
	args := m.Called(ctx, conversationID, blocked)
	return args.Error(0)
}
func (m *MockConversationRepository) Touch(ctx context.Context, conversationID string, at time.Time) error {
	args := m.Called(ctx, conversationID, at)
	return args.Error(0)
}

type MockMessageRepository struct{ mock.Mock }

func (m *MockMessageRepository) Create(ctx context.Context, msg *entity.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}
func (m *MockMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Message), args.Error(1)
}
func (m *MockMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Message), args.Error(1)
}
func (m *MockMessageRepository) MarkAsRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	args := m.Called(ctx, conversationID, userID, at)
	return args.Error(0)
}
func (m *MockMessageRepository) SetDeletedFor(ctx context.Context, messageID string, forSender bool) error {
	args := m.Called(ctx, messageID, forSender)
	return args.Error(0)
}

type MockFavoriteRepository struct{ mock.Mock }

func (m *MockFavoriteRepository) Get(ctx context.Context, userID, listingID string) (*entity.Favorite, error) {
	args := m.Called(ctx, userID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Favorite), args.Error(1)
}
func (m *MockFavoriteRepository) Add(ctx context.Context, favorite *entity.Favorite) error {
	args := m.Called(ctx, favorite)
	return args.Error(0)
}
func (m *MockFavoriteRepository) Remove(ctx context.Context, userID, listingID string) error {
	args := m.Called(ctx, userID, listingID)
	return args.Error(0)
}
func (m *MockFavoriteRepository) FindByUserID(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Favorite), args.Error(1)
}

type MockCacheRepository struct{ mock.Mock }

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishListingSubmitted(ctx context.Context, listing *entity.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishListingPublished(ctx context.Context, listing *entity.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishListingRejected(ctx context.Context, listingID, reason string) error {
	args := m.Called(ctx, listingID, reason)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishListingBumped(ctx context.Context, listingID string, bumpedAt time.Time) error {
	args := m.Called(ctx, listingID, bumpedAt)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishListingSold(ctx context.Context, listingID string) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishMessageCreated(ctx context.Context, msg *entity.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockEmailSender struct{ mock.Mock }

func (m *MockEmailSender) SendEmail(to []string, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

type MockUserDirectory struct{ mock.Mock }

func (m *MockUserDirectory) GetSummaries(ctx context.Context, userIDs []string) (map[string]directory.UserSummary, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]directory.UserSummary), args.Error(1)
}
func (m *MockUserDirectory) GetEmail(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type MockFileStorage struct{ mock.Mock }

func (m *MockFileStorage) Save(ctx context.Context, content []byte, folder, filename string) (*storage.StoredFile, error) {
	args := m.Called(ctx, content, folder, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.StoredFile), args.Error(1)
}
func (m *MockFileStorage) Delete(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

// fakeUnitOfWork runs the callback directly; unit tests exercise the usecase
// logic, not transaction plumbing.
type fakeUnitOfWork struct{}

func (fakeUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
