package repository

import (
	"context"
	"time"

	"github.com/bozormedia/classifieds-service/internal/entity"
)

// InboxRow is one conversation as seen by one participant: the counterpart,
// the last message still visible to the viewer and the viewer's unread count.
type InboxRow struct {
	ConversationID string
	ListingID      string
	OtherUserID    string
	LastMessage    string
	LastMessageAt  *time.Time
	UnreadCount    int64
	UpdatedAt      time.Time
	IsBlocked      bool
}

type ConversationRepository interface {
	Create(ctx context.Context, conv *entity.Conversation) (string, error)
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	// GetByListingAndBuyer resolves the unique thread key.
	GetByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*entity.Conversation, error)
	// GetInbox returns one recency-ordered page of the user's conversations
	// plus the total count.
	GetInbox(ctx context.Context, userID string, page, pageSize int) ([]*InboxRow, int64, error)
	// MarkRead persists the participant's conversation-level read marker.
	MarkRead(ctx context.Context, conversationID, userID string, at time.Time) error
	SetBlocked(ctx context.Context, conversationID string, blocked bool) error
	// Touch bumps the conversation recency after a new message.
	Touch(ctx context.Context, conversationID string, at time.Time) error
}
