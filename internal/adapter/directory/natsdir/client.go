package natsdir

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bozormedia/classifieds-service/internal/config"
	"github.com/bozormedia/classifieds-service/internal/port/directory"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	summariesSubject = "user.directory.summaries"
	emailSubject     = "user.directory.email"
)

// Client resolves user display data over NATS request-reply against the user
// service. Unknown ids are simply absent from the reply.
type Client struct {
	nc     *nats.Conn
	logger *zap.Logger
}

func NewClient(cfg *config.NATSConfig, logger *zap.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.ConnectTimeout),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Error("NATS error", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS for user directory: %w", err)
	}
	return &Client{nc: nc, logger: logger}, nil
}

type summariesRequest struct {
	UserIDs []string `json:"user_ids"`
}

type summariesResponse struct {
	Users []directory.UserSummary `json:"users"`
}

type emailRequest struct {
	UserID string `json:"user_id"`
}

type emailResponse struct {
	Email string `json:"email"`
}

func (c *Client) GetSummaries(ctx context.Context, userIDs []string) (map[string]directory.UserSummary, error) {
	if len(userIDs) == 0 {
		return map[string]directory.UserSummary{}, nil
	}

	data, err := json.Marshal(summariesRequest{UserIDs: userIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summaries request: %w", err)
	}

	msg, err := c.nc.RequestWithContext(ctx, summariesSubject, data)
	if err != nil {
		return nil, fmt.Errorf("user directory summaries request failed: %w", err)
	}

	var resp summariesResponse
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode summaries response: %w", err)
	}

	result := make(map[string]directory.UserSummary, len(resp.Users))
	for _, u := range resp.Users {
		result[u.UserID] = u
	}
	return result, nil
}

func (c *Client) GetEmail(ctx context.Context, userID string) (string, error) {
	data, err := json.Marshal(emailRequest{UserID: userID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal email request: %w", err)
	}

	msg, err := c.nc.RequestWithContext(ctx, emailSubject, data)
	if err != nil {
		return "", fmt.Errorf("user directory email request failed: %w", err)
	}

	var resp emailResponse
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return "", fmt.Errorf("failed to decode email response: %w", err)
	}
	if resp.Email == "" {
		return "", fmt.Errorf("user directory returned no email for user %s", userID)
	}
	return resp.Email, nil
}

func (c *Client) Close() {
	if c.nc != nil && !c.nc.IsClosed() {
		c.nc.Close()
	}
}
