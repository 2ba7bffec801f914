package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	TenantIDKey contextKey = "tenant_id"
	RoleKey     contextKey = "role"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// SendData wraps a successful payload.
func SendData(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// SendError wraps a failure with a machine-readable code.
func SendError(c echo.Context, status int, code, message string, details map[string]string) error {
	return c.JSON(status, Envelope{Success: false, Code: code, Message: message, Details: details})
}

// SendCodedError maps a CodedError onto the envelope, falling back to a
// generic 500 for plain errors.
func SendCodedError(c echo.Context, err error) error {
	if coded, ok := AsCodedError(err); ok {
		return SendError(c, coded.Status, coded.Code, coded.Message, coded.Details)
	}
	return SendError(c, http.StatusInternalServerError, "SERVER_ERROR", err.Error(), nil)
}

// ValidateUUID validates a UUID path or query parameter.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID", fieldName)
	}
	return id, nil
}

// ParseDateRange parses start/end query parameters. Dates come either as
// YYYY-MM-DD or full RFC3339 timestamps; a bare end date extends to the last
// second of that day so the window stays inclusive.
func ParseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, startIsDate, err := parseDateOrTimestamp(startStr, "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, endIsDate, err := parseDateOrTimestamp(endStr, "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	_ = startIsDate
	if endIsDate {
		end = end.Add(24*time.Hour - time.Second)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date cannot be before start date")
	}
	return start, end, nil
}

func parseDateOrTimestamp(value, fieldName string) (time.Time, bool, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false, fmt.Errorf("%s is required", fieldName)
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, fmt.Errorf("%s must be YYYY-MM-DD or RFC3339", fieldName)
}

// ValidatePaginationParams normalizes limit/offset query values.
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetTenantIDFromContext extracts the tenant ID from the request context.
func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok
}

// GetRoleFromContext extracts the caller's role from the request context.
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}
