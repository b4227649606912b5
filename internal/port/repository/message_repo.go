package repository

import (
	"context"
	"time"

	"github.com/bozormedia/classifieds-service/internal/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *entity.Message) (string, error)
	GetByID(ctx context.Context, id string) (*entity.Message, error)
	// ListByConversation returns all messages of a thread, oldest first.
	// Per-viewer visibility filtering is applied by the caller.
	ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error)
	// MarkAsRead stamps ReadAt on every unread message addressed to userID
	// (i.e. sent by the counterpart) in the conversation.
	MarkAsRead(ctx context.Context, conversationID, userID string, at time.Time) error
	// SetDeletedFor persists one side's soft-delete flag. The row is never
	// removed.
	SetDeletedFor(ctx context.Context, messageID string, forSender bool) error
}
