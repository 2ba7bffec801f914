package models

import (
	"time"

	"github.com/google/uuid"
)

type Coupon struct {
	ID              uuid.UUID `json:"id" db:"id"`
	TenantID        uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Code            string    `json:"code" db:"code"`
	DiscountPercent float64   `json:"discount_percent" db:"discount_percent"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
