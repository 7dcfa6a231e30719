package service

import (
	"context"
	"errors"
	"testing"

	"github.com/collab-blog-api/internal/mocks"
	"github.com/collab-blog-api/internal/models"
	"github.com/rs/zerolog"
)

type articleFixture struct {
	articles    *mocks.MockArticleRepository
	statsRepo   *mocks.MockStatsRepository
	broadcaster *mocks.MockBroadcaster
	svc         ArticleService
}

func newArticleFixture() *articleFixture {
	articles := mocks.NewMockArticleRepository()
	statsRepo := mocks.NewMockStatsRepository()
	broadcaster := &mocks.MockBroadcaster{}
	stats := newStatsService(statsRepo, articles, zerolog.Nop())
	return &articleFixture{
		articles:    articles,
		statsRepo:   statsRepo,
		broadcaster: broadcaster,
		svc:         newArticleService(articles, stats, broadcaster, zerolog.Nop()),
	}
}

func TestCreateArticle(t *testing.T) {
	f := newArticleFixture()

	article, err := f.svc.Create(context.Background(), "user-1", &ArticleInput{
		Title:   "Hello",
		Content: "World",
		Tags:    []string{"go"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if article.ID == "" {
		t.Error("Expected a generated article ID")
	}
	if article.AuthorID != "user-1" {
		t.Errorf("Expected author user-1, got %s", article.AuthorID)
	}
}

func TestCreateArticleValidation(t *testing.T) {
	f := newArticleFixture()

	_, err := f.svc.Create(context.Background(), "user-1", &ArticleInput{Title: "No content"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestUpdateArticlePermissions(t *testing.T) {
	f := newArticleFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1", Title: "Original", Content: "Body", AuthorID: "user-1"})

	// A writer may update their own article.
	updated, err := f.svc.Update(ctx, "article-1", "user-1", models.RoleWriter, &ArticleInput{Title: "Edited"})
	if err != nil {
		t.Fatalf("Update by author failed: %v", err)
	}
	if updated.Title != "Edited" {
		t.Errorf("Expected title Edited, got %s", updated.Title)
	}
	if updated.Content != "Body" {
		t.Errorf("Expected empty input fields to leave content alone, got %s", updated.Content)
	}

	// A different writer may not.
	if _, err := f.svc.Update(ctx, "article-1", "user-2", models.RoleWriter, &ArticleInput{Title: "Hijacked"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for non-author writer, got %v", err)
	}

	// An editor may update anyone's article.
	if _, err := f.svc.Update(ctx, "article-1", "user-3", models.RoleEditor, &ArticleInput{Title: "Editorial"}); err != nil {
		t.Errorf("Update by editor failed: %v", err)
	}
}

func TestDeleteArticleAdminOnly(t *testing.T) {
	f := newArticleFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1", AuthorID: "user-1"})
	f.articles.AddLike(ctx, "article-1", "user-2")

	if err := f.svc.Delete(ctx, "article-1", models.RoleEditor); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for editor delete, got %v", err)
	}

	if err := f.svc.Delete(ctx, "article-1", models.RoleAdmin); err != nil {
		t.Fatalf("Delete by admin failed: %v", err)
	}
	if _, ok := f.articles.Articles["article-1"]; ok {
		t.Error("Expected article removed")
	}
	if n, _ := f.articles.CountLikes(ctx, "article-1"); n != 0 {
		t.Errorf("Expected likes removed with the article, got %d", n)
	}

	if err := f.svc.Delete(ctx, "article-1", models.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestToggleLikeRoundTrip(t *testing.T) {
	f := newArticleFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1", AuthorID: "user-1"})

	state, err := f.svc.ToggleLike(ctx, "article-1", "user-2")
	if err != nil {
		t.Fatalf("First toggle failed: %v", err)
	}
	if !state.UserLiked || state.LikeCount != 1 {
		t.Errorf("Expected liked with count 1, got liked=%v count=%d", state.UserLiked, state.LikeCount)
	}

	stats, _ := f.statsRepo.GetByArticle(ctx, "article-1")
	if stats == nil || stats.TotalLikes != 1 {
		t.Fatalf("Expected stats total 1 after like, got %+v", stats)
	}

	state, err = f.svc.ToggleLike(ctx, "article-1", "user-2")
	if err != nil {
		t.Fatalf("Second toggle failed: %v", err)
	}
	if state.UserLiked || state.LikeCount != 0 {
		t.Errorf("Expected unliked with count 0, got liked=%v count=%d", state.UserLiked, state.LikeCount)
	}

	stats, _ = f.statsRepo.GetByArticle(ctx, "article-1")
	if stats.TotalLikes != 0 {
		t.Errorf("Expected stats total back to 0, got %d", stats.TotalLikes)
	}

	if len(f.broadcaster.Calls) != 2 {
		t.Fatalf("Expected 2 broadcasts, got %d", len(f.broadcaster.Calls))
	}
	for _, call := range f.broadcaster.Calls {
		if call.ArticleID != "article-1" || call.Event != "article_liked" {
			t.Errorf("Unexpected broadcast %+v", call)
		}
	}
}

func TestToggleLikeUnknownArticle(t *testing.T) {
	f := newArticleFixture()

	if _, err := f.svc.ToggleLike(context.Background(), "missing", "user-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if len(f.broadcaster.Calls) != 0 {
		t.Error("Expected no broadcast for a failed toggle")
	}
}

func TestToggleLikeDistinctUsers(t *testing.T) {
	f := newArticleFixture()
	ctx := context.Background()
	f.articles.Create(ctx, &models.Article{ID: "article-1"})

	for _, userID := range []string{"user-1", "user-2", "user-3"} {
		if _, err := f.svc.ToggleLike(ctx, "article-1", userID); err != nil {
			t.Fatalf("Toggle for %s failed: %v", userID, err)
		}
	}

	state, err := f.svc.CheckUserLike(ctx, "article-1", "user-1")
	if err != nil {
		t.Fatalf("CheckUserLike failed: %v", err)
	}
	if state.LikeCount != 3 || !state.UserLiked {
		t.Errorf("Expected count 3 and user-1 liked, got count=%d liked=%v", state.LikeCount, state.UserLiked)
	}

	state, _ = f.svc.CheckUserLike(ctx, "article-1", "user-9")
	if state.UserLiked {
		t.Error("Expected user-9 not to have liked")
	}
}

func TestListArticlesPagination(t *testing.T) {
	f := newArticleFixture()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		f.articles.Create(ctx, &models.Article{ID: id, Title: "T " + id, Content: "body"})
	}

	list, err := f.svc.List(ctx, "", "", 0, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Page != 1 {
		t.Errorf("Expected page clamped to 1, got %d", list.Page)
	}
	if list.Total != 3 || list.TotalPages != 2 {
		t.Errorf("Expected total 3 over 2 pages, got %d over %d", list.Total, list.TotalPages)
	}
	if len(list.Articles) != 2 {
		t.Errorf("Expected 2 articles on the first page, got %d", len(list.Articles))
	}
}
