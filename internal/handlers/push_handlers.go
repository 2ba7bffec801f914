package handlers

import (
	"net/http"
	"regexp"
	"strconv"

	"conexx/internal/common"
	"conexx/internal/models"
	"conexx/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var sendTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type PushHandlers struct {
	pushRepo repositories.PushRepository
}

func NewPushHandlers(pushRepo repositories.PushRepository) *PushHandlers {
	return &PushHandlers{pushRepo: pushRepo}
}

// GetSettings handles GET /v1/push/settings.
func (h *PushHandlers) GetSettings(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := resolveTenantID(c)
	if err != nil {
		return err
	}
	settings, err := h.pushRepo.GetSettings(ctx, tenantID)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	if settings == nil {
		settings = &models.PushSettings{
			TenantID: tenantID,
			Enabled:  false,
			SendTime: "09:00",
			Timezone: "America/Sao_Paulo",
			Scope:    "daily",
		}
	}
	return common.SendData(c, http.StatusOK, settings)
}

// PutSettings handles PUT /v1/push/settings.
func (h *PushHandlers) PutSettings(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := resolveTenantID(c)
	if err != nil {
		return err
	}

	var req struct {
		Enabled  bool   `json:"enabled"`
		SendTime string `json:"send_time"`
		Timezone string `json:"timezone"`
		Scope    string `json:"scope"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", nil)
	}
	if !sendTimePattern.MatchString(req.SendTime) {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "send_time must be HH:MM", nil)
	}
	if req.Scope != "daily" && req.Scope != "weekly" {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "scope must be daily or weekly", nil)
	}
	if req.Timezone == "" {
		req.Timezone = "America/Sao_Paulo"
	}

	settings := &models.PushSettings{
		ID:       uuid.New(),
		TenantID: tenantID,
		Enabled:  req.Enabled,
		SendTime: req.SendTime,
		Timezone: req.Timezone,
		Scope:    req.Scope,
	}
	if err := h.pushRepo.UpsertSettings(ctx, settings); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, settings)
}

// Subscribe handles POST /v1/push/subscriptions, registering the caller's
// browser endpoint. Re-posting the same endpoint refreshes the keys.
func (h *PushHandlers) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	var req struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", nil)
	}
	if req.Endpoint == "" {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "endpoint is required", nil)
	}

	subscription := &models.PushSubscription{
		ID:       uuid.New(),
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := h.pushRepo.CreateSubscription(ctx, subscription); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusCreated, subscription)
}

// Unsubscribe handles DELETE /v1/push/subscriptions.
func (h *PushHandlers) Unsubscribe(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", nil)
	}
	if req.Endpoint == "" {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "endpoint is required", nil)
	}

	if err := h.pushRepo.DeleteSubscriptionByEndpoint(ctx, userID, req.Endpoint); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]string{"status": "unsubscribed"})
}

// ListLogs handles GET /v1/push/logs.
func (h *PushHandlers) ListLogs(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := resolveTenantID(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	logs, err := h.pushRepo.ListLogs(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]interface{}{
		"logs":   logs,
		"limit":  limit,
		"offset": offset,
	})
}
