package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/collab-blog-api/internal/auth"
	"github.com/collab-blog-api/internal/models"
	"github.com/collab-blog-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// CommentCreator persists a comment and fans it out; satisfied by the
// comment service
type CommentCreator interface {
	CreateComment(ctx context.Context, articleID, authorID, authorName, content, parentCommentID string) (*models.Comment, error)
}

// Server upgrades HTTP requests to authenticated websocket connections and
// dispatches their events
type Server struct {
	hub      *Hub
	verifier *auth.Verifier
	comments CommentCreator
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewServer creates a websocket server bound to the hub
func NewServer(hub *Hub, verifier *auth.Verifier, comments CommentCreator, frontendURL string, log zerolog.Logger) *Server {
	return &Server{
		hub:      hub,
		verifier: verifier,
		comments: comments,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == frontendURL
			},
		},
		log: log.With().Str("component", "ws").Logger(),
	}
}

// HandleConnection handles GET /ws. The credential is verified before the
// upgrade; a connection that fails authentication never reaches the hub.
func (s *Server) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("Authorization")
	}

	claims, err := s.verifier.Verify(token)
	if err != nil {
		status := http.StatusUnauthorized
		msg := "invalid or expired token"
		if errors.Is(err, auth.ErrTokenMissing) {
			msg = "token required"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("Upgrade failed")
		return
	}

	client := newClient(s.hub, s, conn, claims.UserID, claims.Username, claims.Role, s.log)
	s.hub.Register(client)

	go client.writePump()
	go client.readPump()
}

// ConnectedCount reports how many users currently hold a live connection
func (s *Server) ConnectedCount() int {
	return s.hub.ConnectedCount()
}

// handleEvent dispatches one inbound client event
func (s *Server) handleEvent(c *Client, event *InboundEvent) {
	switch event.Event {
	case EventJoinArticle:
		if articleID := decodeArticleID(event.Data); articleID != "" {
			s.hub.Join(c, articleID)
			s.log.Debug().Str("user_id", c.userID).Str("article_id", articleID).Msg("Joined article room")
		}

	case EventLeaveArticle:
		if articleID := decodeArticleID(event.Data); articleID != "" {
			s.hub.Leave(c, articleID)
			s.log.Debug().Str("user_id", c.userID).Str("article_id", articleID).Msg("Left article room")
		}

	case EventNewComment:
		s.handleNewComment(c, event.Data)

	default:
		s.log.Debug().Str("event", event.Event).Msg("Ignoring unknown event")
	}
}

func (s *Server) handleNewComment(c *Client, raw json.RawMessage) {
	var data NewCommentData
	if err := json.Unmarshal(raw, &data); err != nil || data.ArticleID == "" || data.Content == "" {
		c.enqueue(OutboundEvent{Event: EventCommentError, Data: map[string]string{"message": "articleId and content are required"}})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.comments.CreateComment(ctx, data.ArticleID, c.userID, c.username, data.Content, data.ParentCommentID)
	if err != nil {
		s.log.Error().Err(err).Str("article_id", data.ArticleID).Msg("Failed to create comment")

		msg := "failed to create comment"
		if errors.Is(err, service.ErrNotFound) {
			msg = "parent comment not found"
		}
		c.enqueue(OutboundEvent{Event: EventCommentError, Data: map[string]string{"message": msg}})
	}
}

// decodeArticleID accepts either a bare JSON string or {"articleId": "..."}
func decodeArticleID(raw json.RawMessage) string {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var obj struct {
		ArticleID string `json:"articleId"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ArticleID
	}
	return ""
}
