package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/collab-blog-api/internal/models"
	"github.com/collab-blog-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ArticleService defines the interface for article operations
type ArticleService interface {
	Create(ctx context.Context, authorID string, input *ArticleInput) (*models.Article, error)
	Get(ctx context.Context, id string) (*models.Article, error)
	List(ctx context.Context, search, tag string, page, limit int) (*models.ArticleList, error)
	Update(ctx context.Context, id, actorID, actorRole string, input *ArticleInput) (*models.Article, error)
	Delete(ctx context.Context, id, actorRole string) error
	ToggleLike(ctx context.Context, articleID, userID string) (*models.ArticleLikeState, error)
	CheckUserLike(ctx context.Context, articleID, userID string) (*models.ArticleLikeState, error)
}

// ArticleInput is the mutable part of an article
type ArticleInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Image   string   `json:"image"`
	Tags    []string `json:"tags"`
}

type articleService struct {
	articles    repository.ArticleRepository
	stats       StatsService
	broadcaster Broadcaster
	toggleLocks keyedLock
	log         zerolog.Logger
}

func newArticleService(articles repository.ArticleRepository, stats StatsService, broadcaster Broadcaster, log zerolog.Logger) ArticleService {
	return &articleService{
		articles:    articles,
		stats:       stats,
		broadcaster: broadcaster,
		log:         log.With().Str("service", "article").Logger(),
	}
}

// Create persists a new article authored by the caller
func (s *articleService) Create(ctx context.Context, authorID string, input *ArticleInput) (*models.Article, error) {
	if input.Title == "" || input.Content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}

	article := &models.Article{
		ID:        uuid.New().String(),
		Title:     input.Title,
		Content:   input.Content,
		Image:     input.Image,
		Tags:      input.Tags,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}

	s.log.Info().Str("article_id", article.ID).Str("author_id", authorID).Msg("Article created")
	return article, nil
}

// Get retrieves an article by ID
func (s *articleService) Get(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrNotFound
	}
	return article, nil
}

// List retrieves articles with optional search and tag filters
func (s *articleService) List(ctx context.Context, search, tag string, page, limit int) (*models.ArticleList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	articles, total, err := s.articles.List(ctx, search, tag, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	return &models.ArticleList{
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		Articles:   articles,
	}, nil
}

// Update modifies an article. Admins and editors may update any article;
// writers only their own.
func (s *articleService) Update(ctx context.Context, id, actorID, actorRole string, input *ArticleInput) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrNotFound
	}

	if actorRole != models.RoleAdmin && actorRole != models.RoleEditor && article.AuthorID != actorID {
		return nil, ErrForbidden
	}

	if input.Title != "" {
		article.Title = input.Title
	}
	if input.Content != "" {
		article.Content = input.Content
	}
	if input.Image != "" {
		article.Image = input.Image
	}
	if input.Tags != nil {
		article.Tags = input.Tags
	}

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Delete removes an article and its likes. Admin only. The article's stats
// row is left behind for the lazy orphan sweep.
func (s *articleService) Delete(ctx context.Context, id, actorRole string) error {
	if actorRole != models.RoleAdmin {
		return ErrForbidden
	}

	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if article == nil {
		return ErrNotFound
	}

	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.articles.DeleteLikes(ctx, id); err != nil {
		s.log.Error().Err(err).Str("article_id", id).Msg("Failed to delete article likes")
	}

	s.log.Info().Str("article_id", id).Msg("Article deleted")
	return nil
}

// ToggleLike flips the user's like on the article and keeps the stats
// counters in step. Toggles for the same (article, user) pair are
// serialized by an in-process lock; different users interleave freely.
func (s *articleService) ToggleLike(ctx context.Context, articleID, userID string) (*models.ArticleLikeState, error) {
	exists, err := s.articles.Exists(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	unlock := s.toggleLocks.Lock(articleID + "\x00" + userID)
	defer unlock()

	liked, err := s.articles.HasLike(ctx, articleID, userID)
	if err != nil {
		return nil, err
	}

	if liked {
		if err := s.articles.RemoveLike(ctx, articleID, userID); err != nil {
			return nil, err
		}
		if err := s.stats.Decrement(ctx, articleID); err != nil {
			return nil, err
		}
	} else {
		if err := s.articles.AddLike(ctx, articleID, userID); err != nil {
			return nil, err
		}
		if err := s.stats.Increment(ctx, articleID); err != nil {
			return nil, err
		}
	}

	count, err := s.articles.CountLikes(ctx, articleID)
	if err != nil {
		return nil, err
	}

	state := &models.ArticleLikeState{
		ArticleID: articleID,
		LikeCount: count,
		UserLiked: !liked,
	}

	s.broadcaster.BroadcastToRoom(articleID, "article_liked", map[string]interface{}{
		"articleId": articleID,
		"likeCount": state.LikeCount,
		"userLiked": state.UserLiked,
		"userId":    userID,
	})

	return state, nil
}

// CheckUserLike reports the user's current like state without changing it
func (s *articleService) CheckUserLike(ctx context.Context, articleID, userID string) (*models.ArticleLikeState, error) {
	exists, err := s.articles.Exists(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	liked, err := s.articles.HasLike(ctx, articleID, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.articles.CountLikes(ctx, articleID)
	if err != nil {
		return nil, err
	}

	return &models.ArticleLikeState{ArticleID: articleID, LikeCount: count, UserLiked: liked}, nil
}

// keyedLock serializes work per string key. Entries are reference counted
// and removed when the last holder unlocks.
type keyedLock struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedLock) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*lockEntry)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
