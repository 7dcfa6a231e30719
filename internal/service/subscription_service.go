package service

import (
	"context"
	"fmt"
	"time"

	"github.com/collab-blog-api/internal/models"
	"github.com/collab-blog-api/internal/notify"
	"github.com/collab-blog-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SubscriptionService defines the interface for push subscription management
type SubscriptionService interface {
	Subscribe(ctx context.Context, userID, endpoint string, keys models.SubscriptionKeys) (*models.PushSubscription, error)
	Unsubscribe(ctx context.Context, userID, endpoint string) error
	ListByUser(ctx context.Context, userID string) ([]*models.PushSubscription, error)
	Delete(ctx context.Context, id, userID string) error
	SendTest(ctx context.Context, userID, title, message string) error
}

type subscriptionService struct {
	subs     repository.SubscriptionRepository
	notifier Notifier
	log      zerolog.Logger
}

func newSubscriptionService(subs repository.SubscriptionRepository, notifier Notifier, log zerolog.Logger) SubscriptionService {
	return &subscriptionService{
		subs:     subs,
		notifier: notifier,
		log:      log.With().Str("service", "subscription").Logger(),
	}
}

// Subscribe registers a push endpoint for the user. An endpoint that was
// seen before is rebound and reactivated rather than duplicated.
func (s *subscriptionService) Subscribe(ctx context.Context, userID, endpoint string, keys models.SubscriptionKeys) (*models.PushSubscription, error) {
	if endpoint == "" || keys.P256dh == "" || keys.Auth == "" {
		return nil, fmt.Errorf("%w: endpoint and keys are required", ErrValidation)
	}

	existing, err := s.subs.GetByEndpoint(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.UserID = userID
		existing.Keys = keys
		existing.IsActive = true
		existing.LastUsedAt = time.Now()
		if err := s.subs.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.log.Info().Str("user_id", userID).Str("subscription_id", existing.ID).Msg("Push subscription reactivated")
		return existing, nil
	}

	sub := &models.PushSubscription{
		ID:         uuid.New().String(),
		UserID:     userID,
		Endpoint:   endpoint,
		Keys:       keys,
		IsActive:   true,
		CreatedAt:  time.Now(),
		LastUsedAt: time.Now(),
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", userID).Str("subscription_id", sub.ID).Msg("Push subscription registered")
	return sub, nil
}

// Unsubscribe deactivates the user's subscription for one endpoint. The
// record is kept; only Delete removes it.
func (s *subscriptionService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrValidation)
	}
	return s.subs.DeactivateByEndpoint(ctx, userID, endpoint)
}

// ListByUser returns the user's active subscriptions
func (s *subscriptionService) ListByUser(ctx context.Context, userID string) ([]*models.PushSubscription, error) {
	return s.subs.GetByUser(ctx, userID, true)
}

// Delete removes a subscription the user owns
func (s *subscriptionService) Delete(ctx context.Context, id, userID string) error {
	deleted, err := s.subs.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.log.Info().Str("subscription_id", id).Msg("Push subscription deleted")
	return nil
}

// SendTest dispatches a test notification to the user's own devices
func (s *subscriptionService) SendTest(ctx context.Context, userID, title, message string) error {
	if title == "" {
		title = "Test notification"
	}
	if message == "" {
		message = "This is a push notification test"
	}
	return s.notifier.Notify(ctx, userID, &notify.Payload{
		Type:    "test",
		Title:   title,
		Message: message,
		URL:     "/",
	})
}
