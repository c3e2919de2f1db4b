package notification

import (
	"context"
	"fmt"
	"log"

	authrepo "github.com/jindalsaj/aura/internal/auth/repository"
	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	syncdomain "github.com/jindalsaj/aura/internal/sync/domain"
	"github.com/jindalsaj/aura/pkg/fcm"
)

// Service pushes sync lifecycle notifications to the user's registered
// devices. Delivery failures are logged and swallowed; notifications never
// affect sync state.
type Service struct {
	fcmClient    *fcm.Client
	deviceTokens authrepo.DeviceTokenRepository
}

func NewService(fcmClient *fcm.Client, deviceTokens authrepo.DeviceTokenRepository) *Service {
	return &Service{
		fcmClient:    fcmClient,
		deviceTokens: deviceTokens,
	}
}

func (s *Service) SyncCompleted(ctx context.Context, userID string, outcome syncdomain.SyncOutcome) {
	title := fmt.Sprintf("%s sync finished", outcome.SourceType)
	body := fmt.Sprintf("%d new records stored", outcome.Stored)
	if outcome.Stored == 0 {
		body = "No new records found"
	}
	s.push(ctx, userID, title, body, map[string]string{
		"type":   "sync_completed",
		"source": string(outcome.SourceType),
	})
}

func (s *Service) SyncFailed(ctx context.Context, userID string, sourceType sourcedomain.SourceType, reason string) {
	s.push(ctx, userID, fmt.Sprintf("%s sync failed", sourceType), reason, map[string]string{
		"type":   "sync_failed",
		"source": string(sourceType),
	})
}

func (s *Service) push(ctx context.Context, userID, title, body string, data map[string]string) {
	if s.fcmClient == nil {
		return
	}
	tokens, err := s.deviceTokens.ListByUser(userID)
	if err != nil {
		log.Printf("[Notification] Failed to load tokens for user %s: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	failed, err := s.fcmClient.SendToDevices(ctx, tokenStrings, fcm.NotificationData{
		Title: title,
		Body:  body,
		Data:  data,
	})
	if err != nil {
		log.Printf("[Notification] Push failed for user %s: %v", userID, err)
		return
	}

	// Stale tokens get pruned so the registry stays accurate.
	for _, token := range failed {
		if err := s.deviceTokens.Remove(token); err != nil {
			log.Printf("[Notification] Failed to prune token: %v", err)
		}
	}
}
