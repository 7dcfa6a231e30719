package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/collab-blog-api/internal/models"
	"github.com/collab-blog-api/internal/service"
	"github.com/rs/zerolog"
)

type fakeCommentCreator struct {
	calls []string // articleID of each call
	err   error
}

func (f *fakeCommentCreator) CreateComment(ctx context.Context, articleID, authorID, authorName, content, parentCommentID string) (*models.Comment, error) {
	f.calls = append(f.calls, articleID)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Comment{ID: "comment-1", ArticleID: articleID, AuthorID: authorID, Content: content}, nil
}

func newTestServer(creator CommentCreator) (*Server, *Hub) {
	hub := NewHub(zerolog.Nop())
	srv := NewServer(hub, nil, creator, "http://localhost:3000", zerolog.Nop())
	return srv, hub
}

func TestHandleEventJoinAndLeave(t *testing.T) {
	srv, hub := newTestServer(&fakeCommentCreator{})
	client := newTestClient(hub, "user-1", "alice")
	hub.Register(client)

	srv.handleEvent(client, &InboundEvent{Event: EventJoinArticle, Data: json.RawMessage(`"article-1"`)})
	if hub.RoomSize("article-1") != 1 {
		t.Errorf("Expected room size 1 after join, got %d", hub.RoomSize("article-1"))
	}

	// Object form is accepted too.
	srv.handleEvent(client, &InboundEvent{Event: EventJoinArticle, Data: json.RawMessage(`{"articleId":"article-2"}`)})
	if hub.RoomSize("article-2") != 1 {
		t.Errorf("Expected room size 1 after object-form join, got %d", hub.RoomSize("article-2"))
	}

	srv.handleEvent(client, &InboundEvent{Event: EventLeaveArticle, Data: json.RawMessage(`"article-1"`)})
	if hub.RoomSize("article-1") != 0 {
		t.Errorf("Expected room size 0 after leave, got %d", hub.RoomSize("article-1"))
	}
}

func TestHandleEventUnknownIgnored(t *testing.T) {
	srv, hub := newTestServer(&fakeCommentCreator{})
	client := newTestClient(hub, "user-1", "alice")
	hub.Register(client)

	srv.handleEvent(client, &InboundEvent{Event: "typing", Data: json.RawMessage(`{}`)})
	if events := drain(client); len(events) != 0 {
		t.Errorf("Expected unknown events ignored, got %v", events)
	}
}

func TestHandleNewComment(t *testing.T) {
	creator := &fakeCommentCreator{}
	srv, hub := newTestServer(creator)
	client := newTestClient(hub, "user-1", "alice")
	hub.Register(client)

	srv.handleEvent(client, &InboundEvent{
		Event: EventNewComment,
		Data:  json.RawMessage(`{"articleId":"article-1","content":"hello"}`),
	})

	if len(creator.calls) != 1 || creator.calls[0] != "article-1" {
		t.Fatalf("Expected one create call for article-1, got %v", creator.calls)
	}
	// Fan-out happens inside the comment service; the socket itself gets
	// nothing extra on success.
	if events := drain(client); len(events) != 0 {
		t.Errorf("Expected no direct response on success, got %v", events)
	}
}

func TestHandleNewCommentMissingFields(t *testing.T) {
	creator := &fakeCommentCreator{}
	srv, hub := newTestServer(creator)
	client := newTestClient(hub, "user-1", "alice")
	hub.Register(client)

	srv.handleEvent(client, &InboundEvent{Event: EventNewComment, Data: json.RawMessage(`{"articleId":"article-1"}`)})

	if len(creator.calls) != 0 {
		t.Error("Expected no create call for an incomplete payload")
	}
	events := drain(client)
	if len(events) != 1 || events[0].Event != EventCommentError {
		t.Fatalf("Expected a comment_error event, got %v", events)
	}
}

func TestHandleNewCommentMissingParent(t *testing.T) {
	creator := &fakeCommentCreator{err: service.ErrNotFound}
	srv, hub := newTestServer(creator)
	client := newTestClient(hub, "user-1", "alice")
	hub.Register(client)

	srv.handleEvent(client, &InboundEvent{
		Event: EventNewComment,
		Data:  json.RawMessage(`{"articleId":"article-1","content":"hi","parentCommentId":"gone"}`),
	})

	events := drain(client)
	if len(events) != 1 || events[0].Event != EventCommentError {
		t.Fatalf("Expected a comment_error event, got %v", events)
	}
	msg := events[0].Data.(map[string]string)["message"]
	if msg != "parent comment not found" {
		t.Errorf("Expected parent-not-found message, got %q", msg)
	}
}

func TestDecodeArticleID(t *testing.T) {
	if got := decodeArticleID(json.RawMessage(`"article-1"`)); got != "article-1" {
		t.Errorf("Expected article-1 from bare string, got %q", got)
	}
	if got := decodeArticleID(json.RawMessage(`{"articleId":"article-2"}`)); got != "article-2" {
		t.Errorf("Expected article-2 from object, got %q", got)
	}
	if got := decodeArticleID(json.RawMessage(`42`)); got != "" {
		t.Errorf("Expected empty for non-string payload, got %q", got)
	}
}
