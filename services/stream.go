package services

import (
	"context"
	"fmt"
	"time"

	"lingohub/models"
	"lingohub/utils"

	stream "github.com/GetStream/stream-chat-go/v5"
)

// StreamService mints user tokens for the hosted chat/video provider and
// mirrors our users into it. All chat transport happens client-side against
// Stream; the backend only vouches for identities.
type StreamService struct {
	client *stream.Client
}

func NewStreamService(apiKey, apiSecret string) (*StreamService, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("stream apiKey and apiSecret must be configured")
	}
	client, err := stream.NewClient(apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream client: %w", err)
	}
	return &StreamService{client: client}, nil
}

// UpsertUser mirrors a user into Stream. Stream requires the user to exist
// before a client connects with a token.
func (s *StreamService) UpsertUser(ctx context.Context, user *models.User) error {
	streamUser := &stream.User{
		ID:   user.ID.Hex(),
		Name: user.FullName,
	}
	if streamUser.Name == "" {
		// Users who skipped onboarding get a display name from their email
		streamUser.Name = utils.ExtractNameFromEmail(user.Email)
	}
	if user.ProfilePic != "" {
		streamUser.Image = user.ProfilePic
	}
	_, err := s.client.UpsertUser(ctx, streamUser)
	if err != nil {
		return fmt.Errorf("failed to upsert stream user %s: %w", streamUser.ID, err)
	}
	return nil
}

// CreateToken mints a non-expiring user token for the client SDK.
func (s *StreamService) CreateToken(userID string) (string, error) {
	token, err := s.client.CreateToken(userID, time.Time{})
	if err != nil {
		return "", fmt.Errorf("failed to create stream token: %w", err)
	}
	return token, nil
}
