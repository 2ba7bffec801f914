package repositories

import (
	"context"
	"errors"
	"time"

	"conexx/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TenantRevenue pairs a tenant with its all-time approved revenue; used by the
// blended commission calculation.
type TenantRevenue struct {
	TenantID          uuid.UUID
	CommissionPercent float64
	ApprovedRevenue   float64
}

type OrderRepository interface {
	Upsert(ctx context.Context, order *models.Order) error
	GetByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*models.Order, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error)
	SumApprovedValue(ctx context.Context, tenantID uuid.UUID) (float64, error)
	SumApprovedValueBetween(ctx context.Context, tenantID *uuid.UUID, start, end time.Time) (float64, error)
	CountByStatusBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (map[string]int, error)
	TotalsByPaymentMethodBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (map[string]float64, error)
	ApprovedRevenueByTenant(ctx context.Context) ([]*TenantRevenue, error)
}

type orderRepo struct {
	db DB
}

func NewOrderRepository(db DB) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `id, tenant_id, external_id, customer_name, customer_email, product_label,
		value, payment_method, status, raw_status, coupon_code, order_date, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(&order.ID, &order.TenantID, &order.ExternalID, &order.CustomerName,
		&order.CustomerEmail, &order.ProductLabel, &order.Value, &order.PaymentMethod,
		&order.Status, &order.RawStatus, &order.CouponCode, &order.OrderDate,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Upsert inserts or replaces the row keyed by (tenant_id, external_id).
// Last write wins; re-syncing the same remote order never duplicates it.
func (r *orderRepo) Upsert(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, tenant_id, external_id, customer_name, customer_email,
			product_label, value, payment_method, status, raw_status, coupon_code, order_date,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		ON CONFLICT (tenant_id, external_id) DO UPDATE
		SET customer_name = EXCLUDED.customer_name, customer_email = EXCLUDED.customer_email,
			product_label = EXCLUDED.product_label, value = EXCLUDED.value,
			payment_method = EXCLUDED.payment_method, status = EXCLUDED.status,
			raw_status = EXCLUDED.raw_status, coupon_code = EXCLUDED.coupon_code,
			order_date = EXCLUDED.order_date, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, order.ID, order.TenantID, order.ExternalID,
		order.CustomerName, order.CustomerEmail, order.ProductLabel, order.Value,
		order.PaymentMethod, order.Status, order.RawStatus, order.CouponCode, order.OrderDate)
	return err
}

// GetByExternalID returns (nil, nil) when the order has not been seen before.
func (r *orderRepo) GetByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE tenant_id = $1 AND external_id = $2`
	order, err := scanOrder(r.db.QueryRow(ctx, query, tenantID, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1
		ORDER BY order_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *orderRepo) SumApprovedValue(ctx context.Context, tenantID uuid.UUID) (float64, error) {
	query := `
		SELECT COALESCE(SUM(value), 0)
		FROM orders
		WHERE tenant_id = $1 AND status = $2
	`
	var total float64
	err := r.db.QueryRow(ctx, query, tenantID, models.OrderStatusApproved).Scan(&total)
	return total, err
}

// SumApprovedValueBetween sums approved order values inside [start, end].
// BETWEEN is inclusive at both ends, matching the dashboard's window semantics.
// A nil tenantID aggregates across all tenants.
func (r *orderRepo) SumApprovedValueBetween(ctx context.Context, tenantID *uuid.UUID, start, end time.Time) (float64, error) {
	var total float64
	var err error
	if tenantID != nil {
		query := `
			SELECT COALESCE(SUM(value), 0)
			FROM orders
			WHERE tenant_id = $1 AND status = $2 AND order_date BETWEEN $3 AND $4
		`
		err = r.db.QueryRow(ctx, query, *tenantID, models.OrderStatusApproved, start, end).Scan(&total)
	} else {
		query := `
			SELECT COALESCE(SUM(value), 0)
			FROM orders
			WHERE status = $1 AND order_date BETWEEN $2 AND $3
		`
		err = r.db.QueryRow(ctx, query, models.OrderStatusApproved, start, end).Scan(&total)
	}
	return total, err
}

func (r *orderRepo) CountByStatusBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM orders
		WHERE tenant_id = $1 AND order_date BETWEEN $2 AND $3
		GROUP BY status
	`
	rows, err := r.db.Query(ctx, query, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *orderRepo) TotalsByPaymentMethodBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (map[string]float64, error) {
	query := `
		SELECT payment_method, COALESCE(SUM(value), 0)
		FROM orders
		WHERE tenant_id = $1 AND status = $2 AND order_date BETWEEN $3 AND $4
		GROUP BY payment_method
	`
	rows, err := r.db.Query(ctx, query, tenantID, models.OrderStatusApproved, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var method string
		var total float64
		if err := rows.Scan(&method, &total); err != nil {
			return nil, err
		}
		totals[method] = total
	}
	return totals, rows.Err()
}

func (r *orderRepo) ApprovedRevenueByTenant(ctx context.Context) ([]*TenantRevenue, error) {
	query := `
		SELECT t.id, t.commission_percent, COALESCE(SUM(o.value), 0)
		FROM tenants t
		LEFT JOIN orders o ON o.tenant_id = t.id AND o.status = $1
		GROUP BY t.id, t.commission_percent
	`
	rows, err := r.db.Query(ctx, query, models.OrderStatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revenues []*TenantRevenue
	for rows.Next() {
		rev := &TenantRevenue{}
		if err := rows.Scan(&rev.TenantID, &rev.CommissionPercent, &rev.ApprovedRevenue); err != nil {
			return nil, err
		}
		revenues = append(revenues, rev)
	}
	return revenues, rows.Err()
}
