package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/collab-blog-api/internal/config"
	"github.com/collab-blog-api/internal/models"
)

// ErrorClass buckets push delivery failures by the action they require
type ErrorClass int

const (
	// ClassTransient failures leave the subscription active; no retry here
	ClassTransient ErrorClass = iota
	// ClassGone means the endpoint no longer exists; deactivate
	ClassGone
	// ClassInvalid means the key material is unusable; deactivate
	ClassInvalid
)

// SendError is a classified push delivery failure
type SendError struct {
	Class ErrorClass
	Err   error
}

func (e *SendError) Error() string { return e.Err.Error() }
func (e *SendError) Unwrap() error { return e.Err }

// ClassOf extracts the error class, defaulting to transient
func ClassOf(err error) ErrorClass {
	var se *SendError
	if errors.As(err, &se) {
		return se.Class
	}
	return ClassTransient
}

// PushSender delivers one payload to one subscription endpoint
type PushSender interface {
	Send(ctx context.Context, sub *models.PushSubscription, payload []byte) error
}

// webpushSender sends via the Web Push protocol with VAPID authentication
type webpushSender struct {
	opts webpush.Options
}

// NewWebPushSender creates a PushSender from VAPID configuration
func NewWebPushSender(cfg *config.PushConfig) PushSender {
	return &webpushSender{
		opts: webpush.Options{
			Subscriber:      cfg.Subject,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             60,
		},
	}
}

func (s *webpushSender) Send(ctx context.Context, sub *models.PushSubscription, payload []byte) error {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}

	opts := s.opts
	resp, err := webpush.SendNotificationWithContext(ctx, payload, target, &opts)
	if err != nil {
		// Key material that cannot be decoded surfaces as an error before
		// any request is made.
		msg := err.Error()
		if strings.Contains(msg, "p256dh") || strings.Contains(msg, "decode") {
			return &SendError{Class: ClassInvalid, Err: err}
		}
		return &SendError{Class: ClassTransient, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return &SendError{Class: ClassGone, Err: fmt.Errorf("endpoint gone: status %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return &SendError{Class: ClassTransient, Err: fmt.Errorf("push rejected: status %d", resp.StatusCode)}
	}
	return nil
}
