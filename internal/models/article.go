package models

import (
	"time"
)

// Article represents an article in the system
type Article struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Image     string    `json:"image,omitempty" db:"image"`
	Tags      []string  `json:"tags" db:"-"` // Stored as JSONB in DB
	AuthorID  string    `json:"author_id" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ArticleLikeState is the like summary returned by the toggle endpoint
type ArticleLikeState struct {
	ArticleID string `json:"article_id"`
	LikeCount int    `json:"like_count"`
	UserLiked bool   `json:"user_liked"`
}

// ArticleList is a paginated article listing
type ArticleList struct {
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Articles   []*Article `json:"articles"`
}
