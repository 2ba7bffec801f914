package repositories

import (
	"context"
	"time"

	"conexx/internal/models"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *models.Subscription) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Subscription, error)
	Update(ctx context.Context, subscription *models.Subscription) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Subscription, error)
	FindExpired(ctx context.Context, now time.Time) ([]*models.Subscription, error)
	FindEndingOn(ctx context.Context, day time.Time) ([]*models.Subscription, error)
}

type subscriptionRepo struct {
	db DB
}

func NewSubscriptionRepository(db DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

const subscriptionColumns = `id, tenant_id, asaas_subscription_id, plan_name, amount, billing_type,
		status, start_date, end_date, created_at, updated_at`

func scanSubscription(row interface{ Scan(...interface{}) error }) (*models.Subscription, error) {
	sub := &models.Subscription{}
	err := row.Scan(&sub.ID, &sub.TenantID, &sub.AsaasSubscriptionID, &sub.PlanName, &sub.Amount,
		&sub.BillingType, &sub.Status, &sub.StartDate, &sub.EndDate, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepo) Create(ctx context.Context, subscription *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, tenant_id, asaas_subscription_id, plan_name, amount,
			billing_type, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, subscription.ID, subscription.TenantID,
		subscription.AsaasSubscriptionID, subscription.PlanName, subscription.Amount,
		subscription.BillingType, subscription.Status, subscription.StartDate, subscription.EndDate)
	return err
}

func (r *subscriptionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE tenant_id = $1 AND id = $2`
	return scanSubscription(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *subscriptionRepo) Update(ctx context.Context, subscription *models.Subscription) error {
	query := `
		UPDATE subscriptions
		SET asaas_subscription_id = $1, plan_name = $2, amount = $3, billing_type = $4,
			status = $5, start_date = $6, end_date = $7, updated_at = NOW()
		WHERE tenant_id = $8 AND id = $9
	`
	_, err := r.db.Exec(ctx, query, subscription.AsaasSubscriptionID, subscription.PlanName,
		subscription.Amount, subscription.BillingType, subscription.Status,
		subscription.StartDate, subscription.EndDate, subscription.TenantID, subscription.ID)
	return err
}

func (r *subscriptionRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE tenant_id = $1
		ORDER BY start_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// FindExpired returns subscriptions still marked active whose end date has passed.
func (r *subscriptionRepo) FindExpired(ctx context.Context, now time.Time) ([]*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = $1 AND end_date IS NOT NULL AND end_date < $2
	`
	rows, err := r.db.Query(ctx, query, models.SubscriptionStatusActive, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// FindEndingOn returns active subscriptions whose end date falls on the given
// calendar day.
func (r *subscriptionRepo) FindEndingOn(ctx context.Context, day time.Time) ([]*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = $1 AND end_date IS NOT NULL AND end_date::date = $2::date
	`
	rows, err := r.db.Query(ctx, query, models.SubscriptionStatusActive, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
