package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusOverdue = "overdue"
)

// Payment is a billing charge issued through the payment gateway for a
// tenant's subscription.
type Payment struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	TenantID       uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	SubscriptionID *uuid.UUID `json:"subscription_id" db:"subscription_id"`
	AsaasPaymentID string     `json:"asaas_payment_id" db:"asaas_payment_id"`
	Amount         float64    `json:"amount" db:"amount"`
	Status         string     `json:"status" db:"status"`
	DueDate        time.Time  `json:"due_date" db:"due_date"`
	PaidAt         *time.Time `json:"paid_at" db:"paid_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}
