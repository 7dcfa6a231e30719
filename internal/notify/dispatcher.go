package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/collab-blog-api/internal/models"
	"github.com/collab-blog-api/internal/repository"
	"github.com/rs/zerolog"
)

// LiveSender is the optional live delivery capability, satisfied by the
// realtime hub. Use NopLiveSender when real-time delivery is disabled.
type LiveSender interface {
	SendToUser(userID, event string, data interface{}) bool
}

// NopLiveSender is a LiveSender that never delivers
type NopLiveSender struct{}

func (NopLiveSender) SendToUser(string, string, interface{}) bool { return false }

// Dispatcher routes a notification to a user over two independent paths:
// the live socket connection, if one exists, and every active push
// subscription. Neither path's outcome affects the other.
type Dispatcher struct {
	subs   repository.SubscriptionRepository
	sender PushSender
	live   LiveSender
	log    zerolog.Logger
}

// NewDispatcher creates a notification dispatcher
func NewDispatcher(subs repository.SubscriptionRepository, sender PushSender, live LiveSender, log zerolog.Logger) *Dispatcher {
	if live == nil {
		live = NopLiveSender{}
	}
	return &Dispatcher{
		subs:   subs,
		sender: sender,
		live:   live,
		log:    log.With().Str("component", "dispatcher").Logger(),
	}
}

// Notify attempts live and push delivery for the user. Per-subscription
// push failures are recorded but swallowed; Notify only fails if the
// subscription lookup itself fails.
func (d *Dispatcher) Notify(ctx context.Context, userID string, payload *Payload) error {
	delivered := d.live.SendToUser(userID, "notification", payload)

	subs, err := d.subs.GetByUser(ctx, userID, true)
	if err != nil {
		return fmt.Errorf("failed to load push subscriptions: %w", err)
	}
	if len(subs) == 0 {
		d.log.Debug().Str("user_id", userID).Bool("live", delivered).Msg("No active push subscriptions")
		return nil
	}

	body, err := json.Marshal(payload.toPush())
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	var (
		mu     sync.Mutex
		sent   int
		failed int
		wg     sync.WaitGroup
	)

	for _, sub := range subs {
		sub := sub
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok := d.sendOne(ctx, sub, body)
			mu.Lock()
			if ok {
				sent++
			} else {
				failed++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	d.log.Info().
		Str("user_id", userID).
		Bool("live", delivered).
		Int("push_sent", sent).
		Int("push_failed", failed).
		Msg("Notification dispatched")
	return nil
}

// sendOne attempts delivery to a single subscription, deactivating it when
// the endpoint is gone or its keys are unusable
func (d *Dispatcher) sendOne(ctx context.Context, sub *models.PushSubscription, body []byte) bool {
	if !sub.HasValidKeys() {
		d.log.Warn().Str("subscription_id", sub.ID).Msg("Deactivating subscription: invalid keys")
		if err := d.subs.Deactivate(ctx, sub.ID); err != nil {
			d.log.Error().Err(err).Str("subscription_id", sub.ID).Msg("Failed to deactivate subscription")
		}
		return false
	}

	if err := d.sender.Send(ctx, sub, body); err != nil {
		switch ClassOf(err) {
		case ClassGone, ClassInvalid:
			d.log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("Deactivating subscription")
			if derr := d.subs.Deactivate(ctx, sub.ID); derr != nil {
				d.log.Error().Err(derr).Str("subscription_id", sub.ID).Msg("Failed to deactivate subscription")
			}
		default:
			d.log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("Push send failed")
		}
		return false
	}

	if err := d.subs.Touch(ctx, sub.ID, time.Now()); err != nil {
		d.log.Error().Err(err).Str("subscription_id", sub.ID).Msg("Failed to update last_used_at")
	}
	return true
}
