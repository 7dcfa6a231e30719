package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/collab-blog-api/internal/mocks"
	"github.com/collab-blog-api/internal/models"
	"github.com/collab-blog-api/internal/notify"
	"github.com/rs/zerolog"
)

func activeSub(id, userID, endpoint string) *models.PushSubscription {
	return &models.PushSubscription{
		ID:       id,
		UserID:   userID,
		Endpoint: endpoint,
		Keys:     models.SubscriptionKeys{P256dh: "p256dh-key", Auth: "auth-key"},
		IsActive: true,
	}
}

func testPayload() *notify.Payload {
	return &notify.Payload{
		Type:      "new_comment",
		Title:     "New comment",
		Message:   "alice commented on your article",
		ArticleID: "article-1",
	}
}

func TestNotifyDeliversLiveAndPush(t *testing.T) {
	subs := mocks.NewMockSubscriptionRepository()
	subs.Create(context.Background(), activeSub("sub-1", "user-1", "https://push.example/a"))
	sender := mocks.NewMockPushSender()
	live := mocks.NewMockLiveSender("user-1")
	d := notify.NewDispatcher(subs, sender, live, zerolog.Nop())

	if err := d.Notify(context.Background(), "user-1", testPayload()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if len(live.Delivered) != 1 {
		t.Errorf("Expected 1 live delivery, got %d", len(live.Delivered))
	}
	if sender.SentCount() != 1 {
		t.Errorf("Expected 1 push send, got %d", sender.SentCount())
	}
	if subs.Subscriptions["sub-1"].LastUsedAt.IsZero() {
		t.Error("Expected last_used_at updated after successful send")
	}
}

func TestNotifyPushWithoutLiveConnection(t *testing.T) {
	subs := mocks.NewMockSubscriptionRepository()
	subs.Create(context.Background(), activeSub("sub-1", "user-1", "https://push.example/a"))
	sender := mocks.NewMockPushSender()
	live := mocks.NewMockLiveSender() // nobody online
	d := notify.NewDispatcher(subs, sender, live, zerolog.Nop())

	if err := d.Notify(context.Background(), "user-1", testPayload()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if len(live.Delivered) != 0 {
		t.Errorf("Expected no live delivery, got %d", len(live.Delivered))
	}
	if sender.SentCount() != 1 {
		t.Errorf("Expected 1 push send, got %d", sender.SentCount())
	}
}

func TestNotifyGoneEndpointDeactivatedOthersStillSent(t *testing.T) {
	subs := mocks.NewMockSubscriptionRepository()
	subs.Create(context.Background(), activeSub("sub-1", "user-1", "https://push.example/gone"))
	subs.Create(context.Background(), activeSub("sub-2", "user-1", "https://push.example/alive"))
	sender := mocks.NewMockPushSender()
	sender.ErrorsByEndpoint["https://push.example/gone"] = &notify.SendError{
		Class: notify.ClassGone,
		Err:   errors.New("endpoint gone: status 410"),
	}
	d := notify.NewDispatcher(subs, sender, mocks.NewMockLiveSender(), zerolog.Nop())

	if err := d.Notify(context.Background(), "user-1", testPayload()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if sender.SentCount() != 2 {
		t.Errorf("Expected both subscriptions attempted, got %d", sender.SentCount())
	}
	if subs.Subscriptions["sub-1"].IsActive {
		t.Error("Expected gone endpoint deactivated")
	}
	if !subs.Subscriptions["sub-2"].IsActive {
		t.Error("Expected healthy endpoint to stay active")
	}
	if subs.Subscriptions["sub-2"].LastUsedAt.IsZero() {
		t.Error("Expected healthy endpoint touched")
	}
}

func TestNotifyTransientFailureKeepsSubscriptionActive(t *testing.T) {
	subs := mocks.NewMockSubscriptionRepository()
	subs.Create(context.Background(), activeSub("sub-1", "user-1", "https://push.example/flaky"))
	sender := mocks.NewMockPushSender()
	sender.ErrorsByEndpoint["https://push.example/flaky"] = &notify.SendError{
		Class: notify.ClassTransient,
		Err:   errors.New("push rejected: status 500"),
	}
	d := notify.NewDispatcher(subs, sender, mocks.NewMockLiveSender(), zerolog.Nop())

	if err := d.Notify(context.Background(), "user-1", testPayload()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if !subs.Subscriptions["sub-1"].IsActive {
		t.Error("Expected subscription to stay active after transient failure")
	}
	if !subs.Subscriptions["sub-1"].LastUsedAt.IsZero() {
		t.Error("Expected last_used_at untouched after failed send")
	}
}

func TestNotifyInvalidKeysDeactivatedWithoutSend(t *testing.T) {
	subs := mocks.NewMockSubscriptionRepository()
	broken := activeSub("sub-1", "user-1", "https://push.example/broken")
	broken.Keys = models.SubscriptionKeys{P256dh: "", Auth: "auth-key"}
	subs.Create(context.Background(), broken)
	sender := mocks.NewMockPushSender()
	d := notify.NewDispatcher(subs, sender, mocks.NewMockLiveSender(), zerolog.Nop())

	if err := d.Notify(context.Background(), "user-1", testPayload()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if sender.SentCount() != 0 {
		t.Errorf("Expected no send attempt for unusable keys, got %d", sender.SentCount())
	}
	if subs.Subscriptions["sub-1"].IsActive {
		t.Error("Expected subscription with unusable keys deactivated")
	}
}

func TestNotifySkipsInactiveSubscriptions(t *testing.T) {
	subs := mocks.NewMockSubscriptionRepository()
	inactive := activeSub("sub-1", "user-1", "https://push.example/old")
	inactive.IsActive = false
	subs.Create(context.Background(), inactive)
	sender := mocks.NewMockPushSender()
	d := notify.NewDispatcher(subs, sender, mocks.NewMockLiveSender(), zerolog.Nop())

	if err := d.Notify(context.Background(), "user-1", testPayload()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if sender.SentCount() != 0 {
		t.Errorf("Expected no sends to inactive subscriptions, got %d", sender.SentCount())
	}
}

func TestNotifyLookupFailure(t *testing.T) {
	subs := mocks.NewMockSubscriptionRepository()
	subs.LookupError = errors.New("connection refused")
	d := notify.NewDispatcher(subs, mocks.NewMockPushSender(), mocks.NewMockLiveSender(), zerolog.Nop())

	if err := d.Notify(context.Background(), "user-1", testPayload()); err == nil {
		t.Error("Expected error when the subscription lookup fails")
	}
}

func TestClassOf(t *testing.T) {
	if got := notify.ClassOf(&notify.SendError{Class: notify.ClassGone, Err: errors.New("gone")}); got != notify.ClassGone {
		t.Errorf("Expected ClassGone, got %v", got)
	}
	if got := notify.ClassOf(errors.New("plain")); got != notify.ClassTransient {
		t.Errorf("Expected plain errors to default to transient, got %v", got)
	}
	if got := notify.ClassOf(context.DeadlineExceeded); got != notify.ClassTransient {
		t.Errorf("Expected deadline errors to default to transient, got %v", got)
	}
}
