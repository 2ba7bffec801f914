package repositories

import (
	"context"

	"conexx/internal/models"

	"github.com/google/uuid"
)

type AbandonedCheckoutRepository interface {
	Upsert(ctx context.Context, checkout *models.AbandonedCheckout) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.AbandonedCheckout, error)
	MarkRecoveredByEmail(ctx context.Context, tenantID uuid.UUID, email string) error
}

type abandonedCheckoutRepo struct {
	db DB
}

func NewAbandonedCheckoutRepository(db DB) AbandonedCheckoutRepository {
	return &abandonedCheckoutRepo{db: db}
}

func (r *abandonedCheckoutRepo) Upsert(ctx context.Context, checkout *models.AbandonedCheckout) error {
	query := `
		INSERT INTO abandoned_checkouts (id, tenant_id, external_id, customer_name, customer_email,
			product_label, value, recovered, abandoned_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (tenant_id, external_id) DO UPDATE
		SET customer_name = EXCLUDED.customer_name, customer_email = EXCLUDED.customer_email,
			product_label = EXCLUDED.product_label, value = EXCLUDED.value,
			abandoned_at = EXCLUDED.abandoned_at, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, checkout.ID, checkout.TenantID, checkout.ExternalID,
		checkout.CustomerName, checkout.CustomerEmail, checkout.ProductLabel, checkout.Value,
		checkout.Recovered, checkout.AbandonedAt)
	return err
}

func (r *abandonedCheckoutRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.AbandonedCheckout, error) {
	query := `
		SELECT id, tenant_id, external_id, customer_name, customer_email, product_label, value,
			recovered, abandoned_at, created_at, updated_at
		FROM abandoned_checkouts
		WHERE tenant_id = $1
		ORDER BY abandoned_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkouts []*models.AbandonedCheckout
	for rows.Next() {
		checkout := &models.AbandonedCheckout{}
		if err := rows.Scan(&checkout.ID, &checkout.TenantID, &checkout.ExternalID,
			&checkout.CustomerName, &checkout.CustomerEmail, &checkout.ProductLabel,
			&checkout.Value, &checkout.Recovered, &checkout.AbandonedAt,
			&checkout.CreatedAt, &checkout.UpdatedAt); err != nil {
			return nil, err
		}
		checkouts = append(checkouts, checkout)
	}
	return checkouts, rows.Err()
}

// MarkRecoveredByEmail flags a customer's abandoned carts once an approved
// order from the same email shows up.
func (r *abandonedCheckoutRepo) MarkRecoveredByEmail(ctx context.Context, tenantID uuid.UUID, email string) error {
	query := `
		UPDATE abandoned_checkouts
		SET recovered = TRUE, updated_at = NOW()
		WHERE tenant_id = $1 AND customer_email = $2 AND recovered = FALSE
	`
	_, err := r.db.Exec(ctx, query, tenantID, email)
	return err
}
