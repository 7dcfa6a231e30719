package service

import (
	"context"
	"errors"
	"testing"

	"github.com/collab-blog-api/internal/mocks"
	"github.com/collab-blog-api/internal/models"
	"github.com/rs/zerolog"
)

type commentFixture struct {
	comments    *mocks.MockCommentRepository
	articles    *mocks.MockArticleRepository
	notifier    *mocks.MockNotifier
	broadcaster *mocks.MockBroadcaster
	svc         CommentService
}

func newCommentFixture() *commentFixture {
	comments := mocks.NewMockCommentRepository()
	articles := mocks.NewMockArticleRepository()
	notifier := &mocks.MockNotifier{}
	broadcaster := &mocks.MockBroadcaster{}
	return &commentFixture{
		comments:    comments,
		articles:    articles,
		notifier:    notifier,
		broadcaster: broadcaster,
		svc:         newCommentService(comments, articles, notifier, broadcaster, zerolog.Nop()),
	}
}

func TestCreateCommentBroadcastsAndNotifies(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1", Title: "My Post", AuthorID: "author-1"})

	comment, err := f.svc.CreateComment(ctx, "article-1", "user-2", "bob", "Nice post", "")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if comment.ID == "" || comment.ArticleID != "article-1" {
		t.Errorf("Unexpected comment %+v", comment)
	}

	if len(f.broadcaster.Calls) != 1 {
		t.Fatalf("Expected 1 broadcast, got %d", len(f.broadcaster.Calls))
	}
	call := f.broadcaster.Calls[0]
	if call.ArticleID != "article-1" || call.Event != "comment_added" {
		t.Errorf("Unexpected broadcast %+v", call)
	}
	event, ok := call.Data.(*CommentEvent)
	if !ok {
		t.Fatalf("Expected *CommentEvent payload, got %T", call.Data)
	}
	if event.Type != "comment" || event.Author.Username != "bob" {
		t.Errorf("Unexpected event %+v", event)
	}

	if len(f.notifier.Calls) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(f.notifier.Calls))
	}
	n := f.notifier.Calls[0]
	if n.UserID != "author-1" {
		t.Errorf("Expected the article author notified, got %s", n.UserID)
	}
	if n.Payload.Type != "new_comment" || n.Payload.CommentID != comment.ID {
		t.Errorf("Unexpected payload %+v", n.Payload)
	}
}

func TestCreateCommentOwnArticleNoNotification(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1", AuthorID: "author-1"})

	if _, err := f.svc.CreateComment(ctx, "article-1", "author-1", "alice", "Replying to myself", ""); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if len(f.notifier.Calls) != 0 {
		t.Errorf("Expected no self-notification, got %d", len(f.notifier.Calls))
	}
	if len(f.broadcaster.Calls) != 1 {
		t.Errorf("Expected the broadcast to still happen, got %d", len(f.broadcaster.Calls))
	}
}

func TestCreateCommentRequiresAuth(t *testing.T) {
	f := newCommentFixture()

	if _, err := f.svc.CreateComment(context.Background(), "article-1", "", "", "hi", ""); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestCreateCommentValidation(t *testing.T) {
	f := newCommentFixture()

	if _, err := f.svc.CreateComment(context.Background(), "article-1", "user-1", "alice", "", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for empty content, got %v", err)
	}
	if _, err := f.svc.CreateComment(context.Background(), "", "user-1", "alice", "hi", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for empty article, got %v", err)
	}
}

func TestCreateReplyLinksParent(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1", AuthorID: "author-1"})

	parent, err := f.svc.CreateComment(ctx, "article-1", "user-1", "alice", "Top level", "")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	reply, err := f.svc.CreateComment(ctx, "article-1", "user-2", "bob", "A reply", parent.ID)
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if reply.ParentCommentID != parent.ID {
		t.Errorf("Expected parent %s, got %s", parent.ID, reply.ParentCommentID)
	}

	stored, _ := f.comments.GetByID(ctx, parent.ID)
	if stored.ReplyCount() != 1 || stored.ReplyIDs[0] != reply.ID {
		t.Errorf("Expected reply linked into parent, got %v", stored.ReplyIDs)
	}

	last := f.broadcaster.Calls[len(f.broadcaster.Calls)-1]
	if event := last.Data.(*CommentEvent); event.Type != "reply" {
		t.Errorf("Expected reply event type, got %s", event.Type)
	}
}

func TestCreateReplyMissingParentRejected(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1", AuthorID: "author-1"})

	_, err := f.svc.CreateComment(ctx, "article-1", "user-1", "alice", "Orphan reply", "no-such-comment")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if len(f.comments.Comments) != 0 {
		t.Error("Expected nothing persisted for a rejected reply")
	}
	if len(f.broadcaster.Calls) != 0 || len(f.notifier.Calls) != 0 {
		t.Error("Expected no fan-out for a rejected reply")
	}
}

func TestCreateReplyParentOnOtherArticleRejected(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1", AuthorID: "author-1"})
	f.articles.Create(ctx, &models.Article{ID: "article-2", AuthorID: "author-1"})

	parent, err := f.svc.CreateComment(ctx, "article-1", "user-1", "alice", "On article one", "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.CreateComment(ctx, "article-2", "user-2", "bob", "Cross-thread reply", parent.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a parent on another article, got %v", err)
	}
}

func TestListByArticleNestsReplies(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1", AuthorID: "author-1"})

	parent, _ := f.svc.CreateComment(ctx, "article-1", "user-1", "alice", "Top", "")
	if _, err := f.svc.CreateComment(ctx, "article-1", "user-2", "bob", "Nested", parent.ID); err != nil {
		t.Fatal(err)
	}

	list, err := f.svc.ListByArticle(ctx, "article-1", 1, 10)
	if err != nil {
		t.Fatalf("ListByArticle failed: %v", err)
	}
	if list.TotalComments != 1 {
		t.Errorf("Expected 1 top-level comment, got %d", list.TotalComments)
	}
	if len(list.Comments) != 1 || len(list.Comments[0].Replies) != 1 {
		t.Fatalf("Expected the reply nested under its parent, got %+v", list.Comments)
	}
	if list.Comments[0].Replies[0].Content != "Nested" {
		t.Errorf("Unexpected nested reply %+v", list.Comments[0].Replies[0])
	}
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1", AuthorID: "author-1"})
	comment, _ := f.svc.CreateComment(ctx, "article-1", "user-1", "alice", "Original", "")

	if _, err := f.svc.Update(ctx, comment.ID, "user-2", "Hijacked"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for non-author edit, got %v", err)
	}

	updated, err := f.svc.Update(ctx, comment.ID, "user-1", "Edited")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Content != "Edited" || !updated.IsEdited || updated.EditedAt == nil {
		t.Errorf("Expected edited content with edit markers, got %+v", updated)
	}
}

func TestDeleteCommentAuthorOrAdmin(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1", AuthorID: "author-1"})
	comment, _ := f.svc.CreateComment(ctx, "article-1", "user-1", "alice", "Doomed", "")

	if err := f.svc.Delete(ctx, comment.ID, "user-2", models.RoleReader); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, comment.ID, "user-2", models.RoleAdmin); err != nil {
		t.Fatalf("Admin delete failed: %v", err)
	}

	stored, _ := f.comments.GetByID(ctx, comment.ID)
	if !stored.IsDeleted {
		t.Error("Expected soft delete to set is_deleted")
	}
}

func TestCommentToggleLike(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1", AuthorID: "author-1"})
	comment, _ := f.svc.CreateComment(ctx, "article-1", "user-1", "alice", "Like me", "")

	liked, err := f.svc.ToggleLike(ctx, comment.ID, "user-2")
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if liked.LikeCount() != 1 {
		t.Errorf("Expected 1 like, got %d", liked.LikeCount())
	}

	unliked, err := f.svc.ToggleLike(ctx, comment.ID, "user-2")
	if err != nil {
		t.Fatalf("Second toggle failed: %v", err)
	}
	if unliked.LikeCount() != 0 {
		t.Errorf("Expected 0 likes after untoggle, got %d", unliked.LikeCount())
	}
}
