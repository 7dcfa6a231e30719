package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/collab-blog-api/internal/models"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	Users       map[string]*models.User
	EmailToUser map[string]*models.User
	CreateError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:       make(map[string]*models.User),
		EmailToUser: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Users[user.ID] = user
	m.EmailToUser[user.Email] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.Users[id], nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.EmailToUser[email], nil
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, exists := m.EmailToUser[email]
	return exists, nil
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	for _, u := range m.Users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0, len(m.Users))
	for _, u := range m.Users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	if u, ok := m.Users[id]; ok {
		u.Role = role
	}
	return nil
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	Articles map[string]*models.Article
	Likes    map[string]map[string]bool // articleID -> userID set
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
		Likes:    make(map[string]map[string]bool),
	}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	m.Articles[article.ID] = article
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return m.Articles[id], nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	m.Articles[article.ID] = article
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, exists := m.Articles[id]
	return exists, nil
}

func (m *MockArticleRepository) List(ctx context.Context, search, tag string, page, limit int) ([]*models.Article, int, error) {
	var all []*models.Article
	for _, a := range m.Articles {
		if search != "" && !strings.Contains(strings.ToLower(a.Title+a.Content), strings.ToLower(search)) {
			continue
		}
		if tag != "" {
			found := false
			for _, t := range a.Tags {
				if t == tag {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *MockArticleRepository) HasLike(ctx context.Context, articleID, userID string) (bool, error) {
	return m.Likes[articleID][userID], nil
}

func (m *MockArticleRepository) AddLike(ctx context.Context, articleID, userID string) error {
	if m.Likes[articleID] == nil {
		m.Likes[articleID] = make(map[string]bool)
	}
	m.Likes[articleID][userID] = true
	return nil
}

func (m *MockArticleRepository) RemoveLike(ctx context.Context, articleID, userID string) error {
	delete(m.Likes[articleID], userID)
	return nil
}

func (m *MockArticleRepository) CountLikes(ctx context.Context, articleID string) (int, error) {
	return len(m.Likes[articleID]), nil
}

func (m *MockArticleRepository) DeleteLikes(ctx context.Context, articleID string) error {
	delete(m.Likes, articleID)
	return nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	Comments    map[string]*models.Comment
	CreateError error
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{Comments: make(map[string]*models.Comment)}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Comments[comment.ID] = comment
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	return m.Comments[id], nil
}

func (m *MockCommentRepository) ExistsOnArticle(ctx context.Context, id, articleID string) (bool, error) {
	c, ok := m.Comments[id]
	return ok && c.ArticleID == articleID, nil
}

func (m *MockCommentRepository) AppendReply(ctx context.Context, parentID, replyID string) error {
	if parent, ok := m.Comments[parentID]; ok {
		parent.ReplyIDs = append(parent.ReplyIDs, replyID)
	}
	return nil
}

func (m *MockCommentRepository) ListTopLevel(ctx context.Context, articleID string, page, limit int) ([]*models.Comment, error) {
	var result []*models.Comment
	for _, c := range m.Comments {
		if c.ArticleID == articleID && c.ParentCommentID == "" && !c.IsDeleted {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *MockCommentRepository) CountTopLevel(ctx context.Context, articleID string) (int, error) {
	count := 0
	for _, c := range m.Comments {
		if c.ArticleID == articleID && c.ParentCommentID == "" && !c.IsDeleted {
			count++
		}
	}
	return count, nil
}

func (m *MockCommentRepository) ListReplies(ctx context.Context, parentID string) ([]*models.Comment, error) {
	var result []*models.Comment
	for _, c := range m.Comments {
		if c.ParentCommentID == parentID && !c.IsDeleted {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *MockCommentRepository) UpdateContent(ctx context.Context, id, content string, editedAt time.Time) error {
	if c, ok := m.Comments[id]; ok {
		c.Content = content
		c.IsEdited = true
		c.EditedAt = &editedAt
	}
	return nil
}

func (m *MockCommentRepository) UpdateLikes(ctx context.Context, id string, likes []string) error {
	if c, ok := m.Comments[id]; ok {
		c.Likes = likes
	}
	return nil
}

func (m *MockCommentRepository) SoftDelete(ctx context.Context, id string) error {
	if c, ok := m.Comments[id]; ok {
		c.IsDeleted = true
	}
	return nil
}

// MockStatsRepository is a mock implementation of StatsRepository
type MockStatsRepository struct {
	Stats map[string]*models.ArticleStats // keyed by stats ID
}

func NewMockStatsRepository() *MockStatsRepository {
	return &MockStatsRepository{Stats: make(map[string]*models.ArticleStats)}
}

func (m *MockStatsRepository) Create(ctx context.Context, stats *models.ArticleStats) error {
	m.Stats[stats.ID] = stats
	return nil
}

func (m *MockStatsRepository) GetByArticle(ctx context.Context, articleID string) (*models.ArticleStats, error) {
	for _, s := range m.Stats {
		if s.ArticleID == articleID {
			return s, nil
		}
	}
	return nil, nil
}

func (m *MockStatsRepository) Update(ctx context.Context, stats *models.ArticleStats) error {
	m.Stats[stats.ID] = stats
	return nil
}

func (m *MockStatsRepository) GetAll(ctx context.Context) ([]*models.ArticleStats, error) {
	all := make([]*models.ArticleStats, 0, len(m.Stats))
	for _, s := range m.Stats {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TotalLikes > all[j].TotalLikes })
	return all, nil
}

func (m *MockStatsRepository) Delete(ctx context.Context, id string) error {
	delete(m.Stats, id)
	return nil
}

// MockSubscriptionRepository is a mock implementation of
// SubscriptionRepository. It is safe for concurrent use since the
// dispatcher fans out per subscription.
type MockSubscriptionRepository struct {
	mu            sync.Mutex
	Subscriptions map[string]*models.PushSubscription
	LookupError   error
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{Subscriptions: make(map[string]*models.PushSubscription)}
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *models.PushSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Subscriptions[sub.ID] = sub
	return nil
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, sub *models.PushSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Subscriptions[sub.ID] = sub
	return nil
}

func (m *MockSubscriptionRepository) GetByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Subscriptions {
		if s.Endpoint == endpoint {
			return s, nil
		}
	}
	return nil, nil
}

func (m *MockSubscriptionRepository) GetByUser(ctx context.Context, userID string, activeOnly bool) ([]*models.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	var subs []*models.PushSubscription
	for _, s := range m.Subscriptions {
		if s.UserID != userID {
			continue
		}
		if activeOnly && !s.IsActive {
			continue
		}
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.Before(subs[j].CreatedAt) })
	return subs, nil
}

func (m *MockSubscriptionRepository) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.Subscriptions[id]; ok {
		s.IsActive = false
	}
	return nil
}

func (m *MockSubscriptionRepository) DeactivateByEndpoint(ctx context.Context, userID, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Subscriptions {
		if s.UserID == userID && s.Endpoint == endpoint {
			s.IsActive = false
		}
	}
	return nil
}

func (m *MockSubscriptionRepository) Touch(ctx context.Context, id string, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.Subscriptions[id]; ok {
		s.LastUsedAt = usedAt
	}
	return nil
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.Subscriptions[id]; ok && s.UserID == userID {
		delete(m.Subscriptions, id)
		return true, nil
	}
	return false, nil
}
