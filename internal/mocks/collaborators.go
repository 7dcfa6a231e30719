package mocks

import (
	"context"
	"sync"

	"github.com/collab-blog-api/internal/models"
	"github.com/collab-blog-api/internal/notify"
)

// SentPush records one attempted push delivery
type SentPush struct {
	SubscriptionID string
	Endpoint       string
	Payload        []byte
}

// MockPushSender is a mock implementation of PushSender. ErrorsByEndpoint
// maps an endpoint to the error its send should return.
type MockPushSender struct {
	mu               sync.Mutex
	Sent             []SentPush
	ErrorsByEndpoint map[string]error
}

func NewMockPushSender() *MockPushSender {
	return &MockPushSender{ErrorsByEndpoint: make(map[string]error)}
}

func (m *MockPushSender) Send(ctx context.Context, sub *models.PushSubscription, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentPush{SubscriptionID: sub.ID, Endpoint: sub.Endpoint, Payload: payload})
	return m.ErrorsByEndpoint[sub.Endpoint]
}

func (m *MockPushSender) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// LiveDelivery records one message handed to a connected user
type LiveDelivery struct {
	UserID string
	Event  string
	Data   interface{}
}

// MockLiveSender is a mock implementation of LiveSender. Connected lists
// the user IDs that count as online.
type MockLiveSender struct {
	mu        sync.Mutex
	Connected map[string]bool
	Delivered []LiveDelivery
}

func NewMockLiveSender(connected ...string) *MockLiveSender {
	m := &MockLiveSender{Connected: make(map[string]bool)}
	for _, id := range connected {
		m.Connected[id] = true
	}
	return m
}

func (m *MockLiveSender) SendToUser(userID, event string, data interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.Connected[userID] {
		return false
	}
	m.Delivered = append(m.Delivered, LiveDelivery{UserID: userID, Event: event, Data: data})
	return true
}

// BroadcastCall records one room broadcast
type BroadcastCall struct {
	ArticleID string
	Event     string
	Data      interface{}
}

// MockBroadcaster is a mock implementation of Broadcaster
type MockBroadcaster struct {
	Calls []BroadcastCall
}

func (m *MockBroadcaster) BroadcastToRoom(articleID, event string, data interface{}) {
	m.Calls = append(m.Calls, BroadcastCall{ArticleID: articleID, Event: event, Data: data})
}

// NotifyCall records one notification handed to the dispatcher
type NotifyCall struct {
	UserID  string
	Payload *notify.Payload
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	Calls []NotifyCall
	Err   error
}

func (m *MockNotifier) Notify(ctx context.Context, userID string, payload *notify.Payload) error {
	m.Calls = append(m.Calls, NotifyCall{UserID: userID, Payload: payload})
	return m.Err
}
