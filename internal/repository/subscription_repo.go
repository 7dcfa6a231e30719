package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/collab-blog-api/internal/database"
	"github.com/collab-blog-api/internal/models"
)

// subscriptionRepo is the concrete implementation of SubscriptionRepository
type subscriptionRepo struct {
	db *database.DB
}

// NewSubscriptionRepo creates a new push subscription repository
func NewSubscriptionRepo(db *database.DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

const subscriptionColumns = `id, user_id, endpoint, p256dh, auth, is_active, created_at, last_used_at`

// Create inserts a new push subscription
func (r *subscriptionRepo) Create(ctx context.Context, sub *models.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, is_active, created_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth,
		sub.IsActive, sub.CreatedAt, sub.LastUsedAt,
	)
	return err
}

// Update rebinds an existing endpoint to a user with fresh keys
func (r *subscriptionRepo) Update(ctx context.Context, sub *models.PushSubscription) error {
	query := `
		UPDATE push_subscriptions
		SET user_id = $1, p256dh = $2, auth = $3, is_active = $4, last_used_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		sub.UserID, sub.Keys.P256dh, sub.Keys.Auth, sub.IsActive, sub.LastUsedAt, sub.ID,
	)
	return err
}

// GetByEndpoint retrieves a subscription by its unique endpoint
func (r *subscriptionRepo) GetByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+subscriptionColumns+" FROM push_subscriptions WHERE endpoint = $1", endpoint)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

// GetByUser retrieves a user's subscriptions, optionally only active ones
func (r *subscriptionRepo) GetByUser(ctx context.Context, userID string, activeOnly bool) ([]*models.PushSubscription, error) {
	query := "SELECT " + subscriptionColumns + " FROM push_subscriptions WHERE user_id = $1"
	if activeOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Deactivate marks a subscription inactive; the row is kept
func (r *subscriptionRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE push_subscriptions SET is_active = FALSE WHERE id = $1", id)
	return err
}

// DeactivateByEndpoint marks a user's subscription for one endpoint inactive
func (r *subscriptionRepo) DeactivateByEndpoint(ctx context.Context, userID, endpoint string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE push_subscriptions SET is_active = FALSE WHERE user_id = $1 AND endpoint = $2",
		userID, endpoint)
	return err
}

// Touch records a successful delivery
func (r *subscriptionRepo) Touch(ctx context.Context, id string, usedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE push_subscriptions SET last_used_at = $1 WHERE id = $2", usedAt, id)
	return err
}

// Delete removes a subscription owned by the user, reporting whether a row matched
func (r *subscriptionRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM push_subscriptions WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanSubscription(row rowScanner) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Endpoint, &sub.Keys.P256dh, &sub.Keys.Auth,
		&sub.IsActive, &sub.CreatedAt, &sub.LastUsedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
