package realtime

import (
	"encoding/json"
)

// Client-to-server event names
const (
	EventJoinArticle  = "join_article"
	EventLeaveArticle = "leave_article"
	EventNewComment   = "new_comment"
)

// Server-to-client event names
const (
	EventCommentAdded = "comment_added"
	EventCommentError = "comment_error"
	EventArticleLiked = "article_liked"
	EventNotification = "notification"
)

// InboundEvent is a message received from a client
type InboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutboundEvent is a message sent to a client
type OutboundEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// NewCommentData is the payload of a new_comment event
type NewCommentData struct {
	ArticleID       string `json:"articleId"`
	Content         string `json:"content"`
	ParentCommentID string `json:"parentCommentId,omitempty"`
}
