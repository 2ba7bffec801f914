package repositories

import (
	"context"
	"time"

	"conexx/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
	UpdateCachedRevenue(ctx context.Context, id uuid.UUID, revenue float64, syncedAt time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type tenantRepo struct {
	db DB
}

func NewTenantRepository(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, name, yampi_alias, yampi_token, yampi_secret, yampi_oauth_token,
		meta_ads_account_id, meta_ads_access_token, ga4_property_id, ga4_access_token,
		commission_percent, plan_name, billing_type, status, cached_gross_revenue, last_sync_at,
		created_at, updated_at`

func scanTenant(row interface{ Scan(...interface{}) error }) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	err := row.Scan(&tenant.ID, &tenant.Name, &tenant.YampiAlias, &tenant.YampiToken,
		&tenant.YampiSecret, &tenant.YampiOAuthToken, &tenant.MetaAdsAccountID,
		&tenant.MetaAdsAccessToken, &tenant.GA4PropertyID, &tenant.GA4AccessToken,
		&tenant.CommissionPercent, &tenant.PlanName, &tenant.BillingType, &tenant.Status,
		&tenant.CachedGrossRevenue, &tenant.LastSyncAt, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, yampi_alias, yampi_token, yampi_secret, yampi_oauth_token,
			meta_ads_account_id, meta_ads_access_token, ga4_property_id, ga4_access_token,
			commission_percent, plan_name, billing_type, status, cached_gross_revenue,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tenant.ID, tenant.Name, tenant.YampiAlias, tenant.YampiToken,
		tenant.YampiSecret, tenant.YampiOAuthToken, tenant.MetaAdsAccountID,
		tenant.MetaAdsAccessToken, tenant.GA4PropertyID, tenant.GA4AccessToken,
		tenant.CommissionPercent, tenant.PlanName, tenant.BillingType, tenant.Status,
		tenant.CachedGrossRevenue)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return scanTenant(r.db.QueryRow(ctx, query, id))
}

func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, yampi_alias = $2, yampi_token = $3, yampi_secret = $4,
			yampi_oauth_token = $5, meta_ads_account_id = $6, meta_ads_access_token = $7,
			ga4_property_id = $8, ga4_access_token = $9, commission_percent = $10,
			plan_name = $11, billing_type = $12, status = $13, updated_at = NOW()
		WHERE id = $14
	`
	_, err := r.db.Exec(ctx, query, tenant.Name, tenant.YampiAlias, tenant.YampiToken,
		tenant.YampiSecret, tenant.YampiOAuthToken, tenant.MetaAdsAccountID,
		tenant.MetaAdsAccessToken, tenant.GA4PropertyID, tenant.GA4AccessToken,
		tenant.CommissionPercent, tenant.PlanName, tenant.BillingType, tenant.Status, tenant.ID)
	return err
}

func (r *tenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tenants WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY created_at LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

// UpdateCachedRevenue writes the recomputed gross revenue and sync timestamp.
// Only the revenue aggregator should call this.
func (r *tenantRepo) UpdateCachedRevenue(ctx context.Context, id uuid.UUID, revenue float64, syncedAt time.Time) error {
	query := `
		UPDATE tenants
		SET cached_gross_revenue = $1, last_sync_at = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, revenue, syncedAt, id)
	return err
}

func (r *tenantRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE tenants SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}
