package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/collab-blog-api/internal/database"
	"github.com/collab-blog-api/internal/models"
)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	tagsJSON, _ := json.Marshal(article.Tags)
	if article.Tags == nil {
		tagsJSON = []byte("[]")
	}

	query := `
		INSERT INTO articles (id, title, content, image, tags, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Title, article.Content, article.Image,
		tagsJSON, article.AuthorID, article.CreatedAt, time.Now(),
	)
	return err
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	query := `
		SELECT id, title, content, COALESCE(image, ''), tags, author_id, created_at, updated_at
		FROM articles WHERE id = $1
	`

	var article models.Article
	var tagsJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&article.ID, &article.Title, &article.Content, &article.Image,
		&tagsJSON, &article.AuthorID, &article.CreatedAt, &article.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	json.Unmarshal(tagsJSON, &article.Tags)
	return &article, nil
}

// Update saves an article's mutable fields
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	tagsJSON, _ := json.Marshal(article.Tags)
	if article.Tags == nil {
		tagsJSON = []byte("[]")
	}

	query := `
		UPDATE articles SET title = $1, content = $2, image = $3, tags = $4, updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		article.Title, article.Content, article.Image, tagsJSON, time.Now(), article.ID,
	)
	return err
}

// Delete removes an article
func (r *articleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id)
	return err
}

// Exists checks if an article with the given ID exists
func (r *articleRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// List retrieves articles with optional search/tag filters, newest first
func (r *articleRepo) List(ctx context.Context, search, tag string, page, limit int) ([]*models.Article, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argn := 1

	if search != "" {
		where += fmt.Sprintf(" AND (title ILIKE $%d OR content ILIKE $%d)", argn, argn)
		args = append(args, "%"+search+"%")
		argn++
	}
	if tag != "" {
		where += fmt.Sprintf(" AND tags @> $%d", argn)
		tagJSON, _ := json.Marshal([]string{tag})
		args = append(args, string(tagJSON))
		argn++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, title, content, COALESCE(image, ''), tags, author_id, created_at, updated_at
		FROM articles %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d
	`, where, argn, argn+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		var article models.Article
		var tagsJSON []byte
		err := rows.Scan(
			&article.ID, &article.Title, &article.Content, &article.Image,
			&tagsJSON, &article.AuthorID, &article.CreatedAt, &article.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		json.Unmarshal(tagsJSON, &article.Tags)
		articles = append(articles, &article)
	}
	return articles, total, rows.Err()
}

// HasLike checks whether the user currently likes the article
func (r *articleRepo) HasLike(ctx context.Context, articleID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM article_likes WHERE article_id = $1 AND user_id = $2)",
		articleID, userID,
	).Scan(&exists)
	return exists, err
}

// AddLike records a like; inserting an existing pair is a no-op
func (r *articleRepo) AddLike(ctx context.Context, articleID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO article_likes (article_id, user_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
		articleID, userID, time.Now(),
	)
	return err
}

// RemoveLike removes a like
func (r *articleRepo) RemoveLike(ctx context.Context, articleID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM article_likes WHERE article_id = $1 AND user_id = $2",
		articleID, userID,
	)
	return err
}

// CountLikes returns the number of users who like the article
func (r *articleRepo) CountLikes(ctx context.Context, articleID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM article_likes WHERE article_id = $1", articleID,
	).Scan(&count)
	return count, err
}

// DeleteLikes removes all likes for an article (article deletion)
func (r *articleRepo) DeleteLikes(ctx context.Context, articleID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM article_likes WHERE article_id = $1", articleID)
	return err
}
