package repositories

import (
	"context"
	"errors"
	"time"

	"conexx/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PushRepository interface {
	GetSettings(ctx context.Context, tenantID uuid.UUID) (*models.PushSettings, error)
	UpsertSettings(ctx context.Context, settings *models.PushSettings) error

	CreateSubscription(ctx context.Context, sub *models.PushSubscription) error
	ListSubscriptionsByUser(ctx context.Context, userID uuid.UUID) ([]*models.PushSubscription, error)
	ListSubscriptionsByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.PushSubscription, error)
	DeleteSubscription(ctx context.Context, id uuid.UUID) error
	DeleteSubscriptionByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error

	AppendLog(ctx context.Context, entry *models.PushLog) error
	ListLogs(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.PushLog, error)
	LogExistsSince(ctx context.Context, tenantID uuid.UUID, kind string, since time.Time) (bool, error)
}

type pushRepo struct {
	db DB
}

func NewPushRepository(db DB) PushRepository {
	return &pushRepo{db: db}
}

// GetSettings returns (nil, nil) when the tenant never configured pushes.
func (r *pushRepo) GetSettings(ctx context.Context, tenantID uuid.UUID) (*models.PushSettings, error) {
	query := `
		SELECT id, tenant_id, enabled, send_time, timezone, scope, created_at, updated_at
		FROM push_settings
		WHERE tenant_id = $1
	`
	settings := &models.PushSettings{}
	err := r.db.QueryRow(ctx, query, tenantID).Scan(&settings.ID, &settings.TenantID,
		&settings.Enabled, &settings.SendTime, &settings.Timezone, &settings.Scope,
		&settings.CreatedAt, &settings.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *pushRepo) UpsertSettings(ctx context.Context, settings *models.PushSettings) error {
	query := `
		INSERT INTO push_settings (id, tenant_id, enabled, send_time, timezone, scope, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (tenant_id) DO UPDATE
		SET enabled = EXCLUDED.enabled, send_time = EXCLUDED.send_time,
			timezone = EXCLUDED.timezone, scope = EXCLUDED.scope, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, settings.ID, settings.TenantID, settings.Enabled,
		settings.SendTime, settings.Timezone, settings.Scope)
	return err
}

func (r *pushRepo) CreateSubscription(ctx context.Context, sub *models.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, endpoint) DO UPDATE
		SET p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
	`
	_, err := r.db.Exec(ctx, query, sub.ID, sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth)
	return err
}

func (r *pushRepo) ListSubscriptionsByUser(ctx context.Context, userID uuid.UUID) ([]*models.PushSubscription, error) {
	query := `
		SELECT id, user_id, endpoint, p256dh, auth, created_at
		FROM push_subscriptions
		WHERE user_id = $1
	`
	return r.querySubscriptions(ctx, query, userID)
}

// ListSubscriptionsByTenant returns the push endpoints of every user belonging
// to the tenant, for the scheduled report sends.
func (r *pushRepo) ListSubscriptionsByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.PushSubscription, error) {
	query := `
		SELECT ps.id, ps.user_id, ps.endpoint, ps.p256dh, ps.auth, ps.created_at
		FROM push_subscriptions ps
		JOIN users u ON u.id = ps.user_id
		WHERE u.tenant_id = $1
	`
	return r.querySubscriptions(ctx, query, tenantID)
}

func (r *pushRepo) querySubscriptions(ctx context.Context, query string, arg interface{}) ([]*models.PushSubscription, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.PushSubscription
	for rows.Next() {
		sub := &models.PushSubscription{}
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth,
			&sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *pushRepo) DeleteSubscription(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM push_subscriptions WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *pushRepo) DeleteSubscriptionByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	query := `DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`
	_, err := r.db.Exec(ctx, query, userID, endpoint)
	return err
}

func (r *pushRepo) AppendLog(ctx context.Context, entry *models.PushLog) error {
	query := `
		INSERT INTO push_logs (id, tenant_id, kind, payload, sent_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.TenantID, entry.Kind, entry.Payload, entry.SentAt)
	return err
}

func (r *pushRepo) ListLogs(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.PushLog, error) {
	query := `
		SELECT id, tenant_id, kind, payload, sent_at
		FROM push_logs
		WHERE tenant_id = $1
		ORDER BY sent_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.PushLog
	for rows.Next() {
		entry := &models.PushLog{}
		if err := rows.Scan(&entry.ID, &entry.TenantID, &entry.Kind, &entry.Payload,
			&entry.SentAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (r *pushRepo) LogExistsSince(ctx context.Context, tenantID uuid.UUID, kind string, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM push_logs
			WHERE tenant_id = $1 AND kind = $2 AND sent_at >= $3
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, tenantID, kind, since).Scan(&exists)
	return exists, err
}
