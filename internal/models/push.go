package models

import (
	"time"

	"github.com/google/uuid"
)

// PushSettings is the per-tenant configuration for scheduled report pushes.
type PushSettings struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Enabled   bool      `json:"enabled" db:"enabled"`
	SendTime  string    `json:"send_time" db:"send_time"` // "HH:MM"
	Timezone  string    `json:"timezone" db:"timezone"`   // IANA name, e.g. America/Sao_Paulo
	Scope     string    `json:"scope" db:"scope"`         // daily, weekly
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PushSubscription is a browser push endpoint registered by a user.
type PushSubscription struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Endpoint  string    `json:"endpoint" db:"endpoint"`
	P256dh    string    `json:"p256dh" db:"p256dh"`
	Auth      string    `json:"auth" db:"auth"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PushLog is an append-only record of a generated report send.
type PushLog struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Kind     string    `json:"kind" db:"kind"` // daily_report, weekly_report
	Payload  string    `json:"payload" db:"payload"`
	SentAt   time.Time `json:"sent_at" db:"sent_at"`
}
