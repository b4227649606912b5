package directory

import "context"

// UserSummary is the display projection of a user kept by the user service.
type UserSummary struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// UserDirectory resolves user display data for inbox denormalization and
// seller emails. Implementations tolerate unknown ids by omitting them from
// the result map.
type UserDirectory interface {
	GetSummaries(ctx context.Context, userIDs []string) (map[string]UserSummary, error)
	GetEmail(ctx context.Context, userID string) (string, error)
}
