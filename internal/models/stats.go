package models

import (
	"time"
)

// PeriodLikes is one snapshot in a per-article like series. Likes holds the
// article's cumulative total at that period, so the entry for the current
// period is rewritten in place on every toggle.
type PeriodLikes struct {
	Period string `json:"period"` // "2026-09-01", "2026-W36" or "2026-09"
	Likes  int    `json:"likes"`
}

// ArticleStats holds per-article like statistics, one row per article,
// created lazily on first read or first like
type ArticleStats struct {
	ID           string        `json:"id" db:"id"`
	ArticleID    string        `json:"article_id" db:"article_id"`
	TotalLikes   int           `json:"total_likes" db:"total_likes"`
	DailyLikes   []PeriodLikes `json:"daily_likes" db:"-"`   // JSONB in DB
	WeeklyLikes  []PeriodLikes `json:"weekly_likes" db:"-"`  // JSONB in DB
	MonthlyLikes []PeriodLikes `json:"monthly_likes" db:"-"` // JSONB in DB
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// TopArticle pairs an article with its like total for rankings
type TopArticle struct {
	Article    *Article `json:"article"`
	TotalLikes int      `json:"total_likes"`
}

// GlobalStats is the admin-facing aggregate across all surviving articles
type GlobalStats struct {
	TotalLikes       int           `json:"total_likes"`
	TopLikedArticles []TopArticle  `json:"top_liked_articles"`
	PeriodStats      []PeriodLikes `json:"period_stats"`
	Period           string        `json:"period"`
}
