package handlers

import (
	"net/http"
	"strconv"

	"conexx/internal/common"
	"conexx/internal/models"
	"conexx/internal/services"

	"github.com/labstack/echo/v4"
)

type SubscriptionHandlers struct {
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandlers(subscriptionService services.SubscriptionService) *SubscriptionHandlers {
	return &SubscriptionHandlers{subscriptionService: subscriptionService}
}

// CreateSubscription handles POST /v1/subscriptions (platform_admin only).
func (h *SubscriptionHandlers) CreateSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		TenantID string `json:"tenant_id"`
		services.CreateSubscriptionInput
	}
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", nil)
	}

	tenantID, err := common.ValidateUUID(req.TenantID, "tenant_id")
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	if req.PlanName == "" || req.Amount <= 0 {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "plan_name and a positive amount are required", nil)
	}
	if req.BillingType != models.BillingTypeMonthly && req.BillingType != models.BillingTypeUpfront {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "billing_type must be monthly or upfront", nil)
	}

	subscription, err := h.subscriptionService.CreateSubscription(ctx, tenantID, req.CreateSubscriptionInput)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusCreated, subscription)
}

// CancelSubscription handles DELETE /v1/subscriptions/:id.
func (h *SubscriptionHandlers) CancelSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	subscriptionID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	tenantID, err := resolveTenantID(c)
	if err != nil {
		return err
	}

	if err := h.subscriptionService.CancelSubscription(ctx, tenantID, subscriptionID); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]string{"status": "canceled"})
}

// ListSubscriptions handles GET /v1/subscriptions.
func (h *SubscriptionHandlers) ListSubscriptions(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := resolveTenantID(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	subscriptions, err := h.subscriptionService.ListSubscriptions(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]interface{}{
		"subscriptions": subscriptions,
		"limit":         limit,
		"offset":        offset,
	})
}
