package repository

import (
	"context"
	"time"

	"github.com/collab-blog-api/internal/database"
	"github.com/collab-blog-api/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, id, role string) error
}

// ArticleRepository defines the interface for article data operations,
// including the per-article like set
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, search, tag string, page, limit int) ([]*models.Article, int, error)

	HasLike(ctx context.Context, articleID, userID string) (bool, error)
	AddLike(ctx context.Context, articleID, userID string) error
	RemoveLike(ctx context.Context, articleID, userID string) error
	CountLikes(ctx context.Context, articleID string) (int, error)
	DeleteLikes(ctx context.Context, articleID string) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ExistsOnArticle(ctx context.Context, id, articleID string) (bool, error)
	AppendReply(ctx context.Context, parentID, replyID string) error
	ListTopLevel(ctx context.Context, articleID string, page, limit int) ([]*models.Comment, error)
	CountTopLevel(ctx context.Context, articleID string) (int, error)
	ListReplies(ctx context.Context, parentID string) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, id, content string, editedAt time.Time) error
	UpdateLikes(ctx context.Context, id string, likes []string) error
	SoftDelete(ctx context.Context, id string) error
}

// StatsRepository defines the interface for per-article like statistics
type StatsRepository interface {
	Create(ctx context.Context, stats *models.ArticleStats) error
	GetByArticle(ctx context.Context, articleID string) (*models.ArticleStats, error)
	Update(ctx context.Context, stats *models.ArticleStats) error
	GetAll(ctx context.Context) ([]*models.ArticleStats, error)
	Delete(ctx context.Context, id string) error
}

// SubscriptionRepository defines the interface for durable push subscriptions
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.PushSubscription) error
	Update(ctx context.Context, sub *models.PushSubscription) error
	GetByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error)
	GetByUser(ctx context.Context, userID string, activeOnly bool) ([]*models.PushSubscription, error)
	Deactivate(ctx context.Context, id string) error
	DeactivateByEndpoint(ctx context.Context, userID, endpoint string) error
	Touch(ctx context.Context, id string, usedAt time.Time) error
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User         UserRepository
	Article      ArticleRepository
	Comment      CommentRepository
	Stats        StatsRepository
	Subscription SubscriptionRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepo(db),
		Article:      NewArticleRepo(db),
		Comment:      NewCommentRepo(db),
		Stats:        NewStatsRepo(db),
		Subscription: NewSubscriptionRepo(db),
	}
}
