package repositories

import (
	"context"

	"conexx/internal/models"

	"github.com/google/uuid"
)

type CouponRepository interface {
	Upsert(ctx context.Context, coupon *models.Coupon) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Coupon, error)
}

type couponRepo struct {
	db DB
}

func NewCouponRepository(db DB) CouponRepository {
	return &couponRepo{db: db}
}

func (r *couponRepo) Upsert(ctx context.Context, coupon *models.Coupon) error {
	query := `
		INSERT INTO coupons (id, tenant_id, code, discount_percent, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (tenant_id, code) DO UPDATE
		SET discount_percent = EXCLUDED.discount_percent, active = EXCLUDED.active, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, coupon.ID, coupon.TenantID, coupon.Code,
		coupon.DiscountPercent, coupon.Active)
	return err
}

func (r *couponRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Coupon, error) {
	query := `
		SELECT id, tenant_id, code, discount_percent, active, created_at, updated_at
		FROM coupons
		WHERE tenant_id = $1
		ORDER BY code
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []*models.Coupon
	for rows.Next() {
		coupon := &models.Coupon{}
		if err := rows.Scan(&coupon.ID, &coupon.TenantID, &coupon.Code, &coupon.DiscountPercent,
			&coupon.Active, &coupon.CreatedAt, &coupon.UpdatedAt); err != nil {
			return nil, err
		}
		coupons = append(coupons, coupon)
	}
	return coupons, rows.Err()
}
