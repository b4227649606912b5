package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bozormedia/classifieds-service/internal/config"
	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	ListingSubmittedSubject = "listing.submitted"
	ListingPublishedSubject = "listing.published"
	ListingRejectedSubject  = "listing.rejected"
	ListingBumpedSubject    = "listing.bumped"
	ListingSoldSubject      = "listing.sold"
	MessageCreatedSubject   = "conversation.message.created"
)

type Publisher struct {
	nc     *nats.Conn
	logger *zap.Logger
}

func NewNATSPublisher(cfg *config.NATSConfig, logger *zap.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.ConnectTimeout),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Error("NATS error", zap.Error(err))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("Successfully connected to NATS", zap.String("url", nc.ConnectedUrl()))

	return &Publisher{nc: nc, logger: logger}, nil
}

type listingEventPayload struct {
	ListingID string    `json:"listing_id"`
	SellerID  string    `json:"seller_id,omitempty"`
	Title     string    `json:"title,omitempty"`
	Status    string    `json:"status,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

type messageEventPayload struct {
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (p *Publisher) PublishListingSubmitted(ctx context.Context, listing *entity.Listing) error {
	return p.publish(ListingSubmittedSubject, listingEventPayload{
		ListingID: listing.ID,
		SellerID:  listing.SellerID,
		Title:     listing.Title,
		Status:    string(listing.Status),
		At:        time.Now().UTC(),
	})
}

func (p *Publisher) PublishListingPublished(ctx context.Context, listing *entity.Listing) error {
	return p.publish(ListingPublishedSubject, listingEventPayload{
		ListingID: listing.ID,
		SellerID:  listing.SellerID,
		Title:     listing.Title,
		Status:    string(listing.Status),
		At:        time.Now().UTC(),
	})
}

func (p *Publisher) PublishListingRejected(ctx context.Context, listingID, reason string) error {
	return p.publish(ListingRejectedSubject, listingEventPayload{
		ListingID: listingID,
		Reason:    reason,
		At:        time.Now().UTC(),
	})
}

func (p *Publisher) PublishListingBumped(ctx context.Context, listingID string, bumpedAt time.Time) error {
	return p.publish(ListingBumpedSubject, listingEventPayload{
		ListingID: listingID,
		At:        bumpedAt,
	})
}

func (p *Publisher) PublishListingSold(ctx context.Context, listingID string) error {
	return p.publish(ListingSoldSubject, listingEventPayload{
		ListingID: listingID,
		At:        time.Now().UTC(),
	})
}

func (p *Publisher) PublishMessageCreated(ctx context.Context, msg *entity.Message) error {
	return p.publish(MessageCreatedSubject, messageEventPayload{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		CreatedAt:      msg.CreatedAt,
	})
}

func (p *Publisher) publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("Failed to marshal event payload", zap.Error(err), zap.String("subject", subject))
		return fmt.Errorf("failed to marshal payload for %s: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish NATS message", zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("failed to publish NATS message for %s: %w", subject, err)
	}
	p.logger.Debug("Published NATS message", zap.String("subject", subject))
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && !p.nc.IsClosed() {
		if err := p.nc.Drain(); err != nil {
			p.logger.Error("Error draining NATS connection", zap.Error(err))
		}
		p.nc.Close()
		p.logger.Info("NATS publisher connection closed")
	}
}
