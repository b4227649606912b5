package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/bozormedia/classifieds-service/internal/platform/logger"
	"github.com/bozormedia/classifieds-service/internal/platform/metrics"
	"github.com/bozormedia/classifieds-service/internal/port/directory"
	"github.com/bozormedia/classifieds-service/internal/port/repository"
	"go.uber.org/zap"
)

// placeholderDisplayName substitutes for counterparts the user directory no
// longer knows about.
const placeholderDisplayName = "Deleted user"

// ConversationUsecase implements messaging between buyers and sellers:
// thread creation, inbox aggregation, read markers, blocking and per-side
// message deletion.
type ConversationUsecase struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	listings      repository.ListingRepository
	uow           repository.UnitOfWork
	directory     directory.UserDirectory
	events        EventPublisher
	metrics       *metrics.MetricsManager
	logger        *logger.Logger
}

func NewConversationUsecase(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	listings repository.ListingRepository,
	uow repository.UnitOfWork,
	dir directory.UserDirectory,
	events EventPublisher,
	mm *metrics.MetricsManager,
	log *logger.Logger,
) *ConversationUsecase {
	return &ConversationUsecase{
		conversations: conversations,
		messages:      messages,
		listings:      listings,
		uow:           uow,
		directory:     dir,
		events:        events,
		metrics:       mm,
		logger:        log.Named("ConversationUsecase"),
	}
}

// Start opens (or reuses) the unique thread between a buyer and the seller of
// a published listing and appends the first message.
func (uc *ConversationUsecase) Start(ctx context.Context, listingID, buyerID, body string) (*entity.Conversation, error) {
	ctx, span := tracer.Start(ctx, "ConversationUsecase.Start")
	defer span.End()

	var conv *entity.Conversation
	var msg *entity.Message
	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		listing, err := uc.listings.GetByID(ctx, listingID)
		if err != nil {
			return translateRepoErr(err)
		}
		if listing.Status != entity.StatusPublished {
			return entity.ErrListingNotPublished
		}

		conv, err = uc.conversations.GetByListingAndBuyer(ctx, listingID, buyerID)
		if errors.Is(err, repository.ErrNotFound) {
			conv, err = entity.NewConversation(listingID, listing.SellerID, buyerID)
			if err != nil {
				return err
			}
			var id string
			id, err = uc.conversations.Create(ctx, conv)
			if errors.Is(err, repository.ErrDuplicateKey) {
				// A concurrent Start created the thread first; reuse it.
				conv, err = uc.conversations.GetByListingAndBuyer(ctx, listingID, buyerID)
			} else if err == nil {
				conv.ID = id
			}
		}
		if err != nil {
			return err
		}

		msg, err = entity.NewMessage(conv, buyerID, body)
		if err != nil {
			return err
		}
		msgID, err := uc.messages.Create(ctx, msg)
		if err != nil {
			return err
		}
		msg.ID = msgID
		conv.Touch(msg.CreatedAt)
		return uc.conversations.Touch(ctx, conv.ID, msg.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	uc.afterMessage(ctx, msg)
	uc.logger.Info("Conversation started", zap.String("conversation_id", conv.ID), zap.String("listing_id", listingID))
	return conv, nil
}

// SendMessage appends a message to an existing thread. Only participants of
// an unblocked conversation may send.
func (uc *ConversationUsecase) SendMessage(ctx context.Context, conversationID, senderID, body string) (*entity.Message, error) {
	ctx, span := tracer.Start(ctx, "ConversationUsecase.SendMessage")
	defer span.End()

	var msg *entity.Message
	err := uc.uow.Execute(ctx, func(ctx context.Context) error {
		conv, err := uc.conversations.GetByID(ctx, conversationID)
		if err != nil {
			return translateRepoErr(err)
		}
		msg, err = entity.NewMessage(conv, senderID, body)
		if err != nil {
			return err
		}
		msgID, err := uc.messages.Create(ctx, msg)
		if err != nil {
			return err
		}
		msg.ID = msgID
		return uc.conversations.Touch(ctx, conversationID, msg.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	uc.afterMessage(ctx, msg)
	return msg, nil
}

// InboxItem is one conversation in a user's inbox with the counterpart's
// display summary denormalized in.
type InboxItem struct {
	ConversationID string
	ListingID      string
	OtherUser      directory.UserSummary
	LastMessage    string
	LastMessageAt  *time.Time
	UnreadCount    int64
	IsBlocked      bool
	UpdatedAt      time.Time
}

// GetInboxOutput is one page of a user's inbox.
type GetInboxOutput struct {
	Items      []*InboxItem
	TotalCount int64
}

// GetInbox returns the user's conversations ordered by recency, with the
// other participant resolved through the user directory. Unknown users get a
// generic placeholder so a deleted account never breaks the inbox.
func (uc *ConversationUsecase) GetInbox(ctx context.Context, userID string, page, pageSize int) (*GetInboxOutput, error) {
	ctx, span := tracer.Start(ctx, "ConversationUsecase.GetInbox")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}

	rows, total, err := uc.conversations.GetInbox(ctx, userID, page, pageSize)
	if err != nil {
		uc.logger.Error("Failed to load inbox", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("ConversationUsecase.GetInbox: %w", err)
	}

	otherIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		otherIDs = append(otherIDs, row.OtherUserID)
	}

	summaries := map[string]directory.UserSummary{}
	if len(otherIDs) > 0 {
		summaries, err = uc.directory.GetSummaries(ctx, otherIDs)
		if err != nil {
			// Inbox still renders with placeholders when the directory is down.
			uc.logger.Warn("Failed to resolve user summaries", zap.Error(err), zap.String("user_id", userID))
			summaries = map[string]directory.UserSummary{}
		}
	}

	items := make([]*InboxItem, 0, len(rows))
	for _, row := range rows {
		summary, ok := summaries[row.OtherUserID]
		if !ok {
			summary = directory.UserSummary{UserID: row.OtherUserID, DisplayName: placeholderDisplayName}
		}
		items = append(items, &InboxItem{
			ConversationID: row.ConversationID,
			ListingID:      row.ListingID,
			OtherUser:      summary,
			LastMessage:    row.LastMessage,
			LastMessageAt:  row.LastMessageAt,
			UnreadCount:    row.UnreadCount,
			IsBlocked:      row.IsBlocked,
			UpdatedAt:      row.UpdatedAt,
		})
	}
	return &GetInboxOutput{Items: items, TotalCount: total}, nil
}

// ConversationHeader is the listing snapshot shown above a thread.
type ConversationHeader struct {
	ConversationID string
	ListingID      string
	Title          string
	Price          float64
	Currency       string
}

// GetHeader returns the listing snapshot for a thread. A missing conversation
// and a conversation the caller is not part of both yield ErrNotFound, so a
// non-participant cannot probe for existence.
func (uc *ConversationUsecase) GetHeader(ctx context.Context, conversationID, userID string) (*ConversationHeader, error) {
	ctx, span := tracer.Start(ctx, "ConversationUsecase.GetHeader")
	defer span.End()

	conv, err := uc.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	if !conv.IsParticipant(userID) {
		return nil, entity.ErrNotFound
	}

	listing, err := uc.listings.GetByID(ctx, conv.ListingID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return &ConversationHeader{
		ConversationID: conv.ID,
		ListingID:      listing.ID,
		Title:          listing.Title,
		Price:          listing.Price,
		Currency:       listing.Currency,
	}, nil
}

// MarkRead updates the caller's conversation-level read marker and stamps
// ReadAt on every message addressed to them, in one commit. The two facts are
// persisted separately (the marker feeds unread counts, per-message ReadAt
// feeds receipts) but must never diverge.
func (uc *ConversationUsecase) MarkRead(ctx context.Context, conversationID, userID string) error {
	ctx, span := tracer.Start(ctx, "ConversationUsecase.MarkRead")
	defer span.End()

	now := time.Now().UTC()
	return uc.uow.Execute(ctx, func(ctx context.Context) error {
		conv, err := uc.conversations.GetByID(ctx, conversationID)
		if err != nil {
			return translateRepoErr(err)
		}
		if !conv.IsParticipant(userID) {
			return entity.ErrForbidden
		}
		if err := uc.conversations.MarkRead(ctx, conversationID, userID, now); err != nil {
			return err
		}
		return uc.messages.MarkAsRead(ctx, conversationID, userID, now)
	})
}

// SetBlocked flips the conversation-wide block flag. Either participant may
// block or unblock; the flag is shared, not per-direction.
func (uc *ConversationUsecase) SetBlocked(ctx context.Context, conversationID, userID string, blocked bool) error {
	ctx, span := tracer.Start(ctx, "ConversationUsecase.SetBlocked")
	defer span.End()

	return uc.uow.Execute(ctx, func(ctx context.Context) error {
		conv, err := uc.conversations.GetByID(ctx, conversationID)
		if err != nil {
			return translateRepoErr(err)
		}
		if err := conv.SetBlocked(userID, blocked); err != nil {
			return err
		}
		return uc.conversations.SetBlocked(ctx, conversationID, blocked)
	})
}

// DeleteMessageForMe hides one message from the caller's view. The row is
// retained and the other participant's view is unaffected.
func (uc *ConversationUsecase) DeleteMessageForMe(ctx context.Context, conversationID, messageID, userID string) error {
	ctx, span := tracer.Start(ctx, "ConversationUsecase.DeleteMessageForMe")
	defer span.End()

	return uc.uow.Execute(ctx, func(ctx context.Context) error {
		conv, err := uc.conversations.GetByID(ctx, conversationID)
		if err != nil {
			return translateRepoErr(err)
		}
		if !conv.IsParticipant(userID) {
			return entity.ErrForbidden
		}

		msg, err := uc.messages.GetByID(ctx, messageID)
		if err != nil {
			return translateRepoErr(err)
		}
		if msg.ConversationID != conversationID {
			return entity.ErrNotFound
		}
		return uc.messages.SetDeletedFor(ctx, messageID, userID == msg.SenderID)
	})
}

// ListMessages returns the thread as the caller sees it: messages they
// deleted for themselves are filtered out.
func (uc *ConversationUsecase) ListMessages(ctx context.Context, conversationID, userID string) ([]*entity.Message, error) {
	ctx, span := tracer.Start(ctx, "ConversationUsecase.ListMessages")
	defer span.End()

	conv, err := uc.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	if !conv.IsParticipant(userID) {
		return nil, entity.ErrNotFound
	}

	all, err := uc.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("ConversationUsecase.ListMessages: %w", err)
	}
	visible := make([]*entity.Message, 0, len(all))
	for _, msg := range all {
		if msg.VisibleTo(userID) {
			visible = append(visible, msg)
		}
	}
	return visible, nil
}

func (uc *ConversationUsecase) afterMessage(ctx context.Context, msg *entity.Message) {
	if uc.metrics != nil {
		uc.metrics.MessagesSentTotal.Inc()
	}
	if uc.events != nil {
		if pubErr := uc.events.PublishMessageCreated(ctx, msg); pubErr != nil {
			uc.logger.Warn("Failed to publish message.created event",
				zap.Error(pubErr), zap.String("message_id", msg.ID))
		}
	}
}
