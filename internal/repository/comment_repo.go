package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/collab-blog-api/internal/database"
	"github.com/collab-blog-api/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

const commentColumns = `id, article_id, author_id, author_name, content,
	COALESCE(parent_comment_id, ''), reply_ids, likes, is_edited, edited_at, is_deleted,
	created_at, updated_at`

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	replyJSON := marshalStrings(comment.ReplyIDs)
	likesJSON := marshalStrings(comment.Likes)

	var parent interface{}
	if comment.ParentCommentID != "" {
		parent = comment.ParentCommentID
	}

	query := `
		INSERT INTO comments (id, article_id, author_id, author_name, content, parent_comment_id,
			reply_ids, likes, is_edited, edited_at, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.ArticleID, comment.AuthorID, comment.AuthorName, comment.Content,
		parent, replyJSON, likesJSON, comment.IsEdited, comment.EditedAt, comment.IsDeleted,
		comment.CreatedAt, time.Now(),
	)
	return err
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+commentColumns+" FROM comments WHERE id = $1", id)
	comment, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return comment, err
}

// ExistsOnArticle checks that a comment exists and belongs to the article
func (r *commentRepo) ExistsOnArticle(ctx context.Context, id, articleID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1 AND article_id = $2)",
		id, articleID,
	).Scan(&exists)
	return exists, err
}

// AppendReply atomically appends a reply ID to the parent's reply list
func (r *commentRepo) AppendReply(ctx context.Context, parentID, replyID string) error {
	idJSON, _ := json.Marshal(replyID)
	_, err := r.db.ExecContext(ctx,
		"UPDATE comments SET reply_ids = reply_ids || $1::jsonb, updated_at = $2 WHERE id = $3",
		string(idJSON), time.Now(), parentID,
	)
	return err
}

// ListTopLevel retrieves non-deleted top-level comments for an article, newest first
func (r *commentRepo) ListTopLevel(ctx context.Context, articleID string, page, limit int) ([]*models.Comment, error) {
	query := "SELECT " + commentColumns + ` FROM comments
		WHERE article_id = $1 AND parent_comment_id IS NULL AND is_deleted = FALSE
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, articleID, limit, (page-1)*limit)
}

// CountTopLevel counts non-deleted top-level comments for an article
func (r *commentRepo) CountTopLevel(ctx context.Context, articleID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comments WHERE article_id = $1 AND parent_comment_id IS NULL AND is_deleted = FALSE",
		articleID,
	).Scan(&count)
	return count, err
}

// ListReplies retrieves non-deleted replies to a comment, oldest first
func (r *commentRepo) ListReplies(ctx context.Context, parentID string) ([]*models.Comment, error) {
	query := "SELECT " + commentColumns + ` FROM comments
		WHERE parent_comment_id = $1 AND is_deleted = FALSE
		ORDER BY created_at ASC`
	return r.list(ctx, query, parentID)
}

// UpdateContent replaces a comment's content and marks it edited
func (r *commentRepo) UpdateContent(ctx context.Context, id, content string, editedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE comments SET content = $1, is_edited = TRUE, edited_at = $2, updated_at = $2 WHERE id = $3",
		content, editedAt, id,
	)
	return err
}

// UpdateLikes replaces the comment's like set
func (r *commentRepo) UpdateLikes(ctx context.Context, id string, likes []string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE comments SET likes = $1, updated_at = $2 WHERE id = $3",
		marshalStrings(likes), time.Now(), id,
	)
	return err
}

// SoftDelete marks a comment deleted; the row is retained for thread integrity
func (r *commentRepo) SoftDelete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE comments SET is_deleted = TRUE, updated_at = $1 WHERE id = $2",
		time.Now(), id,
	)
	return err
}

func (r *commentRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	var replyJSON, likesJSON []byte
	var editedAt sql.NullTime

	err := row.Scan(
		&comment.ID, &comment.ArticleID, &comment.AuthorID, &comment.AuthorName, &comment.Content,
		&comment.ParentCommentID, &replyJSON, &likesJSON, &comment.IsEdited, &editedAt,
		&comment.IsDeleted, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	json.Unmarshal(replyJSON, &comment.ReplyIDs)
	json.Unmarshal(likesJSON, &comment.Likes)
	if editedAt.Valid {
		comment.EditedAt = &editedAt.Time
	}
	return &comment, nil
}

func marshalStrings(values []string) []byte {
	if values == nil {
		return []byte("[]")
	}
	data, _ := json.Marshal(values)
	return data
}
