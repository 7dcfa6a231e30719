package models

import (
	"time"
)

// Comment represents a comment on an article. Comments form a thread:
// a reply carries its parent's ID and the parent accumulates reply IDs.
// Deletion is soft so thread structure survives.
type Comment struct {
	ID              string     `json:"id" db:"id"`
	ArticleID       string     `json:"article_id" db:"article_id"`
	AuthorID        string     `json:"author_id" db:"author_id"`
	AuthorName      string     `json:"author_name" db:"author_name"`
	Content         string     `json:"content" db:"content"`
	ParentCommentID string     `json:"parent_comment_id,omitempty" db:"parent_comment_id"`
	ReplyIDs        []string   `json:"reply_ids" db:"-"` // Stored as JSONB in DB
	Likes           []string   `json:"likes" db:"-"`     // User IDs, stored as JSONB in DB
	IsEdited        bool       `json:"is_edited" db:"is_edited"`
	EditedAt        *time.Time `json:"edited_at,omitempty" db:"edited_at"`
	IsDeleted       bool       `json:"is_deleted" db:"is_deleted"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`

	// Replies is populated on reads that nest a thread; not a column.
	Replies []*Comment `json:"replies,omitempty" db:"-"`
}

// ReplyCount returns the number of direct replies
func (c *Comment) ReplyCount() int {
	return len(c.ReplyIDs)
}

// LikeCount returns the number of users who liked this comment
func (c *Comment) LikeCount() int {
	return len(c.Likes)
}

// CommentList is a paginated comment listing for one article
type CommentList struct {
	Comments      []*Comment `json:"comments"`
	CurrentPage   int        `json:"current_page"`
	TotalPages    int        `json:"total_pages"`
	TotalComments int        `json:"total_comments"`
}
