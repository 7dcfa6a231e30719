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

// CommentService defines the interface for comment operations. CreateComment
// is the shared core of the REST and socket paths: persist, link into the
// thread, broadcast to the article room, notify the article's author.
type CommentService interface {
	CreateComment(ctx context.Context, articleID, authorID, authorName, content, parentCommentID string) (*models.Comment, error)
	ListByArticle(ctx context.Context, articleID string, page, limit int) (*models.CommentList, error)
	Get(ctx context.Context, id string) (*models.Comment, error)
	Update(ctx context.Context, id, actorID, content string) (*models.Comment, error)
	Delete(ctx context.Context, id, actorID, actorRole string) error
	ToggleLike(ctx context.Context, id, userID string) (*models.Comment, error)
}

// CommentAuthor is the synthesized author attached to broadcast comments;
// cross-service author enrichment does not happen here
type CommentAuthor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// CommentEvent is the payload of a comment_added broadcast
type CommentEvent struct {
	Comment *models.Comment `json:"comment"`
	Author  CommentAuthor   `json:"author"`
	Type    string          `json:"type"` // "comment" or "reply"
}

type commentService struct {
	comments    repository.CommentRepository
	articles    repository.ArticleRepository
	notifier    Notifier
	broadcaster Broadcaster
	likeLocks   keyedLock
	log         zerolog.Logger
}

func newCommentService(comments repository.CommentRepository, articles repository.ArticleRepository, notifier Notifier, broadcaster Broadcaster, log zerolog.Logger) CommentService {
	return &commentService{
		comments:    comments,
		articles:    articles,
		notifier:    notifier,
		broadcaster: broadcaster,
		log:         log.With().Str("service", "comment").Logger(),
	}
}

// CreateComment persists a comment and fans it out. A reply whose parent is
// missing (or belongs to a different article) is rejected before anything is
// persisted. Persistence failure means no broadcast; failure to look up the
// article for the author notification never fails the operation.
func (s *commentService) CreateComment(ctx context.Context, articleID, authorID, authorName, content, parentCommentID string) (*models.Comment, error) {
	if authorID == "" {
		return nil, ErrNotAuthenticated
	}
	if articleID == "" || content == "" {
		return nil, fmt.Errorf("%w: articleId and content are required", ErrValidation)
	}

	if parentCommentID != "" {
		ok, err := s.comments.ExistsOnArticle(ctx, parentCommentID, articleID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: parent comment %s", ErrNotFound, parentCommentID)
		}
	}

	comment := &models.Comment{
		ID:              uuid.New().String(),
		ArticleID:       articleID,
		AuthorID:        authorID,
		AuthorName:      authorName,
		Content:         content,
		ParentCommentID: parentCommentID,
		CreatedAt:       time.Now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if parentCommentID != "" {
		if err := s.comments.AppendReply(ctx, parentCommentID, comment.ID); err != nil {
			return nil, fmt.Errorf("failed to link reply to parent: %w", err)
		}
	}

	eventType := "comment"
	if parentCommentID != "" {
		eventType = "reply"
	}
	s.broadcaster.BroadcastToRoom(articleID, "comment_added", &CommentEvent{
		Comment: comment,
		Author:  CommentAuthor{ID: authorID, Username: authorName},
		Type:    eventType,
	})

	s.notifyArticleAuthor(ctx, articleID, comment, authorID, authorName)

	return comment, nil
}

func (s *commentService) notifyArticleAuthor(ctx context.Context, articleID string, comment *models.Comment, authorID, authorName string) {
	article, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		s.log.Error().Err(err).Str("article_id", articleID).Msg("Failed to look up article for notification")
		return
	}
	if article == nil || article.AuthorID == authorID {
		return
	}

	payload := &notify.Payload{
		Type:      "new_comment",
		Title:     "New comment",
		Message:   fmt.Sprintf("%s commented on your article %q", authorName, article.Title),
		ArticleID: articleID,
		CommentID: comment.ID,
	}
	if err := s.notifier.Notify(ctx, article.AuthorID, payload); err != nil {
		s.log.Error().Err(err).Str("user_id", article.AuthorID).Msg("Failed to notify article author")
	}
}

// ListByArticle retrieves an article's top-level comments, newest first,
// with replies nested oldest first
func (s *commentService) ListByArticle(ctx context.Context, articleID string, page, limit int) (*models.CommentList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	comments, err := s.comments.ListTopLevel(ctx, articleID, page, limit)
	if err != nil {
		return nil, err
	}
	for _, comment := range comments {
		replies, err := s.comments.ListReplies(ctx, comment.ID)
		if err != nil {
			return nil, err
		}
		comment.Replies = replies
	}

	total, err := s.comments.CountTopLevel(ctx, articleID)
	if err != nil {
		return nil, err
	}

	return &models.CommentList{
		Comments:      comments,
		CurrentPage:   page,
		TotalPages:    (total + limit - 1) / limit,
		TotalComments: total,
	}, nil
}

// Get retrieves a comment by ID
func (s *commentService) Get(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound
	}
	return comment, nil
}

// Update edits a comment's content. Only the author may edit.
func (s *commentService) Update(ctx context.Context, id, actorID, content string) (*models.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound
	}
	if comment.AuthorID != actorID {
		return nil, ErrForbidden
	}

	now := time.Now()
	if err := s.comments.UpdateContent(ctx, id, content, now); err != nil {
		return nil, err
	}

	comment.Content = content
	comment.IsEdited = true
	comment.EditedAt = &now
	return comment, nil
}

// Delete soft-deletes a comment. The author or an admin may delete; the row
// is retained and children are untouched.
func (s *commentService) Delete(ctx context.Context, id, actorID, actorRole string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrNotFound
	}
	if comment.AuthorID != actorID && actorRole != models.RoleAdmin {
		return ErrForbidden
	}
	return s.comments.SoftDelete(ctx, id)
}

// ToggleLike flips the user's like on a comment
func (s *commentService) ToggleLike(ctx context.Context, id, userID string) (*models.Comment, error) {
	unlock := s.likeLocks.Lock(id + "\x00" + userID)
	defer unlock()

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound
	}

	likes := comment.Likes[:0:0]
	found := false
	for _, uid := range comment.Likes {
		if uid == userID {
			found = true
			continue
		}
		likes = append(likes, uid)
	}
	if !found {
		likes = append(likes, userID)
	}

	if err := s.comments.UpdateLikes(ctx, id, likes); err != nil {
		return nil, err
	}
	comment.Likes = likes
	return comment, nil
}
