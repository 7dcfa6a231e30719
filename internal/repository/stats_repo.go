package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/collab-blog-api/internal/database"
	"github.com/collab-blog-api/internal/models"
)

// statsRepo is the concrete implementation of StatsRepository
type statsRepo struct {
	db *database.DB
}

// NewStatsRepo creates a new stats repository
func NewStatsRepo(db *database.DB) StatsRepository {
	return &statsRepo{db: db}
}

// Create inserts a new stats record
func (r *statsRepo) Create(ctx context.Context, stats *models.ArticleStats) error {
	query := `
		INSERT INTO article_stats (id, article_id, total_likes, daily_likes, weekly_likes, monthly_likes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		stats.ID, stats.ArticleID, stats.TotalLikes,
		marshalPeriods(stats.DailyLikes), marshalPeriods(stats.WeeklyLikes), marshalPeriods(stats.MonthlyLikes),
		stats.CreatedAt, time.Now(),
	)
	return err
}

// GetByArticle retrieves the stats record for an article
func (r *statsRepo) GetByArticle(ctx context.Context, articleID string) (*models.ArticleStats, error) {
	query := `
		SELECT id, article_id, total_likes, daily_likes, weekly_likes, monthly_likes, created_at, updated_at
		FROM article_stats WHERE article_id = $1
	`
	stats, err := scanStats(r.db.QueryRowContext(ctx, query, articleID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return stats, err
}

// Update rewrites the counters and period series
func (r *statsRepo) Update(ctx context.Context, stats *models.ArticleStats) error {
	query := `
		UPDATE article_stats
		SET total_likes = $1, daily_likes = $2, weekly_likes = $3, monthly_likes = $4, updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		stats.TotalLikes,
		marshalPeriods(stats.DailyLikes), marshalPeriods(stats.WeeklyLikes), marshalPeriods(stats.MonthlyLikes),
		time.Now(), stats.ID,
	)
	return err
}

// GetAll retrieves every stats record, most liked first
func (r *statsRepo) GetAll(ctx context.Context) ([]*models.ArticleStats, error) {
	query := `
		SELECT id, article_id, total_likes, daily_likes, weekly_likes, monthly_likes, created_at, updated_at
		FROM article_stats ORDER BY total_likes DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []*models.ArticleStats
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, stats)
	}
	return all, rows.Err()
}

// Delete physically removes a stats record (orphan sweep)
func (r *statsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM article_stats WHERE id = $1", id)
	return err
}

func scanStats(row rowScanner) (*models.ArticleStats, error) {
	var stats models.ArticleStats
	var daily, weekly, monthly []byte

	err := row.Scan(
		&stats.ID, &stats.ArticleID, &stats.TotalLikes,
		&daily, &weekly, &monthly,
		&stats.CreatedAt, &stats.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	json.Unmarshal(daily, &stats.DailyLikes)
	json.Unmarshal(weekly, &stats.WeeklyLikes)
	json.Unmarshal(monthly, &stats.MonthlyLikes)
	return &stats, nil
}

func marshalPeriods(periods []models.PeriodLikes) []byte {
	if periods == nil {
		return []byte("[]")
	}
	data, _ := json.Marshal(periods)
	return data
}
