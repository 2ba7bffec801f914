package models

import (
	"time"

	"github.com/google/uuid"
)

// AbandonedCheckout mirrors Order but carries no settled value; the customer
// left before payment. Recovered flips when a later order with the same
// external id shows up approved.
type AbandonedCheckout struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TenantID      uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ExternalID    string    `json:"external_id" db:"external_id"`
	CustomerName  string    `json:"customer_name" db:"customer_name"`
	CustomerEmail *string   `json:"customer_email" db:"customer_email"`
	ProductLabel  string    `json:"product_label" db:"product_label"`
	Value         float64   `json:"value" db:"value"`
	Recovered     bool      `json:"recovered" db:"recovered"`
	AbandonedAt   time.Time `json:"abandoned_at" db:"abandoned_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
