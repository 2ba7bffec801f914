package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusExpired  = "expired"
	SubscriptionStatusCanceled = "canceled"
)

const (
	BillingTypeMonthly = "monthly"
	BillingTypeUpfront = "upfront"
)

type Subscription struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	TenantID            uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	AsaasSubscriptionID *string    `json:"asaas_subscription_id" db:"asaas_subscription_id"`
	PlanName            string     `json:"plan_name" db:"plan_name"`
	Amount              float64    `json:"amount" db:"amount"`
	BillingType         string     `json:"billing_type" db:"billing_type"`
	Status              string     `json:"status" db:"status"`
	StartDate           time.Time  `json:"start_date" db:"start_date"`
	EndDate             *time.Time `json:"end_date" db:"end_date"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}
