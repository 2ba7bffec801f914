package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies the domain event behind a notification.
type NotificationType string

const (
	NotificationTypeSale         NotificationType = "SALE"
	NotificationTypeNewTenant    NotificationType = "NEW_TENANT"
	NotificationTypeBillPaid     NotificationType = "BILL_PAID"
	NotificationTypeBillDue      NotificationType = "BILL_DUE"
	NotificationTypeBillCreated  NotificationType = "BILL_CREATED"
	NotificationTypePlanExpiring NotificationType = "PLAN_EXPIRING"
	NotificationTypePlanExpired  NotificationType = "PLAN_EXPIRED"
)

// Notification is a per-user in-app notification record.
type Notification struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	UserID     uuid.UUID        `json:"user_id" db:"user_id"`
	Type       NotificationType `json:"type" db:"type"`
	Title      string           `json:"title" db:"title"`
	Message    string           `json:"message" db:"message"`
	ActionLink *string          `json:"action_link" db:"action_link"`
	Read       bool             `json:"read" db:"read"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}
