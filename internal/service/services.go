package service

import (
	"context"
	"errors"

	"github.com/collab-blog-api/internal/auth"
	"github.com/collab-blog-api/internal/notify"
	"github.com/collab-blog-api/internal/repository"
	"github.com/rs/zerolog"
)

// Failure taxonomy shared by all services. Handlers map these onto HTTP
// statuses; the realtime layer maps them onto comment_error events.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Broadcaster fans an event out to every live connection watching an
// article; satisfied by the realtime hub
type Broadcaster interface {
	BroadcastToRoom(articleID, event string, data interface{})
}

// NopBroadcaster is a Broadcaster that drops everything, for configurations
// without real-time delivery
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastToRoom(string, string, interface{}) {}

// Notifier routes a personal notification to a user's live connection and
// push subscriptions; satisfied by the notify dispatcher
type Notifier interface {
	Notify(ctx context.Context, userID string, payload *notify.Payload) error
}

// Services holds all service interfaces
type Services struct {
	User         UserService
	Article      ArticleService
	Comment      CommentService
	Stats        StatsService
	Subscription SubscriptionService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, verifier *auth.Verifier, notifier Notifier, broadcaster Broadcaster, log zerolog.Logger) *Services {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}

	statsSvc := newStatsService(repos.Stats, repos.Article, log)
	return &Services{
		User:         newUserService(repos.User, verifier, log),
		Article:      newArticleService(repos.Article, statsSvc, broadcaster, log),
		Comment:      newCommentService(repos.Comment, repos.Article, notifier, broadcaster, log),
		Stats:        statsSvc,
		Subscription: newSubscriptionService(repos.Subscription, notifier, log),
	}
}
