package entity

import (
	"fmt"
	"time"
)

// Conversation is the unique message thread between a buyer and a seller
// about one listing. It owns its messages, the shared block flag and the
// per-participant read markers.
type Conversation struct {
	ID        string
	ListingID string
	SellerID  string
	BuyerID   string

	IsBlocked        bool
	SellerLastReadAt *time.Time
	BuyerLastReadAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewConversation opens a thread between a buyer and the seller of a listing.
// Self-messaging is not allowed.
func NewConversation(listingID, sellerID, buyerID string) (*Conversation, error) {
	if listingID == "" || sellerID == "" || buyerID == "" {
		return nil, fmt.Errorf("%w: listingID, sellerID and buyerID are required", ErrValidation)
	}
	if sellerID == buyerID {
		return nil, fmt.Errorf("%w: cannot start a conversation with yourself", ErrValidation)
	}
	now := time.Now().UTC()
	return &Conversation{
		ListingID: listingID,
		SellerID:  sellerID,
		BuyerID:   buyerID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsParticipant reports whether the user is the seller or the buyer.
func (c *Conversation) IsParticipant(userID string) bool {
	return userID == c.SellerID || userID == c.BuyerID
}

// OtherParticipant returns the counterpart of the given participant.
func (c *Conversation) OtherParticipant(userID string) string {
	if userID == c.SellerID {
		return c.BuyerID
	}
	return c.SellerID
}

// MarkRead updates the caller's own read marker. The counterpart's marker is
// never touched.
func (c *Conversation) MarkRead(userID string, now time.Time) error {
	if !c.IsParticipant(userID) {
		return ErrForbidden
	}
	read := now
	if userID == c.SellerID {
		c.SellerLastReadAt = &read
	} else {
		c.BuyerLastReadAt = &read
	}
	return nil
}

// LastReadAt returns the read marker of the given participant.
func (c *Conversation) LastReadAt(userID string) *time.Time {
	if userID == c.SellerID {
		return c.SellerLastReadAt
	}
	return c.BuyerLastReadAt
}

// SetBlocked flips the conversation-wide block flag. Blocking is not
// per-direction: either participant can block and the whole thread stops.
func (c *Conversation) SetBlocked(userID string, blocked bool) error {
	if !c.IsParticipant(userID) {
		return ErrForbidden
	}
	c.IsBlocked = blocked
	return nil
}

// Touch bumps the conversation recency, used when a new message arrives.
func (c *Conversation) Touch(at time.Time) { c.UpdatedAt = at }

// Message belongs to a conversation. The body is immutable once created;
// per-side deletion only flips a visibility flag and never removes the row.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Body           string
	CreatedAt      time.Time
	ReadAt         *time.Time

	DeletedForSender   bool
	DeletedForReceiver bool
}

// NewMessage creates a message from a conversation participant.
func NewMessage(conv *Conversation, senderID, body string) (*Message, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: message body cannot be empty", ErrValidation)
	}
	if !conv.IsParticipant(senderID) {
		return nil, ErrForbidden
	}
	if conv.IsBlocked {
		return nil, ErrForbidden
	}
	return &Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// DeleteFor hides the message from one participant's view. The side is
// derived from who is asking: the sender flips DeletedForSender, the other
// participant flips DeletedForReceiver.
func (m *Message) DeleteFor(userID string) {
	if userID == m.SenderID {
		m.DeletedForSender = true
	} else {
		m.DeletedForReceiver = true
	}
}

// VisibleTo reports whether the viewer still sees this message.
func (m *Message) VisibleTo(userID string) bool {
	if userID == m.SenderID {
		return !m.DeletedForSender
	}
	return !m.DeletedForReceiver
}
