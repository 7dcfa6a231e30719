package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/collab-blog-api/internal/models"
	"github.com/collab-blog-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StatsService defines the interface for per-article like statistics
type StatsService interface {
	Increment(ctx context.Context, articleID string) error
	Decrement(ctx context.Context, articleID string) error
	GetArticleStats(ctx context.Context, articleID, period string, limit int) (*ArticleStatsResult, error)
	GetGlobalStats(ctx context.Context, period string, limit int) (*models.GlobalStats, error)
	CleanOrphaned(ctx context.Context) (int, error)
}

// ArticleStatsResult is the per-article stats response
type ArticleStatsResult struct {
	TotalLikes int                  `json:"total_likes"`
	Stats      []models.PeriodLikes `json:"stats"`
	Period     string               `json:"period"`
}

// Stats periods
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

type statsService struct {
	stats    repository.StatsRepository
	articles repository.ArticleRepository
	now      func() time.Time
	log      zerolog.Logger
}

func newStatsService(stats repository.StatsRepository, articles repository.ArticleRepository, log zerolog.Logger) *statsService {
	return &statsService{
		stats:    stats,
		articles: articles,
		now:      time.Now,
		log:      log.With().Str("service", "stats").Logger(),
	}
}

// Increment records one more like for the article, creating the stats row
// on first use
func (s *statsService) Increment(ctx context.Context, articleID string) error {
	return s.adjust(ctx, articleID, +1)
}

// Decrement records one fewer like for the article; the total never drops
// below zero
func (s *statsService) Decrement(ctx context.Context, articleID string) error {
	return s.adjust(ctx, articleID, -1)
}

func (s *statsService) adjust(ctx context.Context, articleID string, delta int) error {
	stats, err := s.getOrCreate(ctx, articleID)
	if err != nil {
		return err
	}

	stats.TotalLikes += delta
	if stats.TotalLikes < 0 {
		stats.TotalLikes = 0
	}
	s.snapshotPeriods(stats)

	return s.stats.Update(ctx, stats)
}

func (s *statsService) getOrCreate(ctx context.Context, articleID string) (*models.ArticleStats, error) {
	stats, err := s.stats.GetByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		return stats, nil
	}

	stats = &models.ArticleStats{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		CreatedAt: s.now(),
	}
	if err := s.stats.Create(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// snapshotPeriods writes the current total into the entry for the current
// day, week and month. The current period's entry is rewritten in place;
// older entries are never touched.
func (s *statsService) snapshotPeriods(stats *models.ArticleStats) {
	now := s.now()
	year, week := now.ISOWeek()

	stats.DailyLikes = upsertPeriod(stats.DailyLikes, now.Format("2006-01-02"), stats.TotalLikes)
	stats.WeeklyLikes = upsertPeriod(stats.WeeklyLikes, fmt.Sprintf("%d-W%02d", year, week), stats.TotalLikes)
	stats.MonthlyLikes = upsertPeriod(stats.MonthlyLikes, now.Format("2006-01"), stats.TotalLikes)
}

func upsertPeriod(series []models.PeriodLikes, key string, likes int) []models.PeriodLikes {
	for i := range series {
		if series[i].Period == key {
			series[i].Likes = likes
			return series
		}
	}
	return append(series, models.PeriodLikes{Period: key, Likes: likes})
}

// GetArticleStats returns one article's like series, creating the row lazily
func (s *statsService) GetArticleStats(ctx context.Context, articleID, period string, limit int) (*ArticleStatsResult, error) {
	stats, err := s.getOrCreate(ctx, articleID)
	if err != nil {
		return nil, err
	}

	series := seriesFor(stats, period)
	return &ArticleStatsResult{
		TotalLikes: stats.TotalLikes,
		Stats:      lastN(series, limit),
		Period:     normalizePeriod(period),
	}, nil
}

// GetGlobalStats aggregates likes across all articles. Stats rows whose
// article no longer exists are excluded and physically deleted as a side
// effect of the read.
func (s *statsService) GetGlobalStats(ctx context.Context, period string, limit int) (*models.GlobalStats, error) {
	all, err := s.stats.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	type survivor struct {
		stats   *models.ArticleStats
		article *models.Article
	}
	var surviving []survivor

	for _, stats := range all {
		article, err := s.articles.GetByID(ctx, stats.ArticleID)
		if err != nil {
			return nil, err
		}
		if article == nil {
			// Orphan sweep: the backing article is gone.
			if derr := s.stats.Delete(ctx, stats.ID); derr != nil {
				s.log.Error().Err(derr).Str("stats_id", stats.ID).Msg("Failed to delete orphaned stats")
			} else {
				s.log.Info().Str("article_id", stats.ArticleID).Msg("Deleted orphaned stats")
			}
			continue
		}
		surviving = append(surviving, survivor{stats: stats, article: article})
	}

	result := &models.GlobalStats{Period: normalizePeriod(period)}
	for _, sv := range surviving {
		result.TotalLikes += sv.stats.TotalLikes
	}

	sort.SliceStable(surviving, func(i, j int) bool {
		return surviving[i].stats.TotalLikes > surviving[j].stats.TotalLikes
	})
	for i, sv := range surviving {
		if i >= 10 {
			break
		}
		result.TopLikedArticles = append(result.TopLikedArticles, models.TopArticle{
			Article:    sv.article,
			TotalLikes: sv.stats.TotalLikes,
		})
	}

	merged := make(map[string]int)
	for _, sv := range surviving {
		for _, entry := range seriesFor(sv.stats, period) {
			merged[entry.Period] += entry.Likes
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		result.PeriodStats = append(result.PeriodStats, models.PeriodLikes{Period: k, Likes: merged[k]})
	}
	result.PeriodStats = lastN(result.PeriodStats, limit)

	return result, nil
}

// CleanOrphaned deletes every stats row whose article no longer exists and
// returns how many were removed
func (s *statsService) CleanOrphaned(ctx context.Context) (int, error) {
	all, err := s.stats.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, stats := range all {
		exists, err := s.articles.Exists(ctx, stats.ArticleID)
		if err != nil {
			return deleted, err
		}
		if exists {
			continue
		}
		if err := s.stats.Delete(ctx, stats.ID); err != nil {
			return deleted, err
		}
		deleted++
		s.log.Info().Str("article_id", stats.ArticleID).Msg("Deleted orphaned stats")
	}
	return deleted, nil
}

func seriesFor(stats *models.ArticleStats, period string) []models.PeriodLikes {
	switch period {
	case PeriodWeekly:
		return stats.WeeklyLikes
	case PeriodMonthly:
		return stats.MonthlyLikes
	default:
		return stats.DailyLikes
	}
}

func normalizePeriod(period string) string {
	switch period {
	case PeriodWeekly, PeriodMonthly:
		return period
	default:
		return PeriodDaily
	}
}

func lastN(series []models.PeriodLikes, n int) []models.PeriodLikes {
	if n <= 0 {
		n = 30
	}
	if len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}
