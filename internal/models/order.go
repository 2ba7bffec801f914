package models

import (
	"time"

	"github.com/google/uuid"
)

// Canonical payment methods.
const (
	PaymentMethodPix    = "PIX"
	PaymentMethodCard   = "Cartão"
	PaymentMethodBoleto = "Boleto"
)

// Canonical order statuses.
const (
	OrderStatusApproved = "APROVADO"
	OrderStatusPending  = "AGUARDANDO"
	OrderStatusCanceled = "CANCELADO"
)

// Order is one row per remote storefront order. (tenant_id, external_id) is
// unique; re-syncing the same external order updates the row in place.
type Order struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TenantID      uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ExternalID    string    `json:"external_id" db:"external_id"`
	CustomerName  string    `json:"customer_name" db:"customer_name"`
	CustomerEmail *string   `json:"customer_email" db:"customer_email"`
	ProductLabel  string    `json:"product_label" db:"product_label"`
	Value         float64   `json:"value" db:"value"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	Status        string    `json:"status" db:"status"`
	RawStatus     string    `json:"raw_status" db:"raw_status"`
	CouponCode    *string   `json:"coupon_code" db:"coupon_code"`
	OrderDate     time.Time `json:"order_date" db:"order_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
