package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"conexx/internal/common"
	"conexx/internal/models"
	"conexx/internal/repositories"
	"conexx/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TenantHandlers struct {
	tenantRepo      repositories.TenantRepository
	notificationSvc services.NotificationService
}

func NewTenantHandlers(tenantRepo repositories.TenantRepository, notificationSvc services.NotificationService) *TenantHandlers {
	return &TenantHandlers{
		tenantRepo:      tenantRepo,
		notificationSvc: notificationSvc,
	}
}

type tenantRequest struct {
	Name              string  `json:"name"`
	YampiAlias        string  `json:"yampi_alias"`
	CommissionPercent float64 `json:"commission_percent"`
	PlanName          string  `json:"plan_name"`
	BillingType       string  `json:"billing_type"`
}

// CreateTenant handles POST /v1/tenants (platform_admin only).
func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	ctx := c.Request().Context()

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", nil)
	}
	if req.Name == "" {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}

	tenant := &models.Tenant{
		ID:                uuid.New(),
		Name:              req.Name,
		YampiAlias:        req.YampiAlias,
		CommissionPercent: req.CommissionPercent,
		PlanName:          req.PlanName,
		BillingType:       req.BillingType,
		Status:            models.TenantStatusActive,
	}
	if err := h.tenantRepo.Create(ctx, tenant); err != nil {
		return common.SendCodedError(c, err)
	}

	title := "Novo cliente cadastrado"
	message := fmt.Sprintf("%s entrou na plataforma (plano %s)", tenant.Name, tenant.PlanName)
	if err := h.notificationSvc.NotifyPlatformAdmins(ctx, models.NotificationTypeNewTenant, title, message, nil); err != nil {
		c.Logger().Errorf("Failed to notify admins about new tenant %s: %v", tenant.ID.String(), err)
	}
	return common.SendData(c, http.StatusCreated, tenant)
}

// ListTenants handles GET /v1/tenants (platform_admin only).
func (h *TenantHandlers) ListTenants(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	tenants, err := h.tenantRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetTenant handles GET /v1/tenants/:id. Tenant users can only read their own.
func (h *TenantHandlers) GetTenant(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	if err := h.authorizeTenantAccess(c, id); err != nil {
		return err
	}

	tenant, err := h.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return common.SendError(c, http.StatusNotFound, "NOT_FOUND", "Tenant not found", nil)
	}
	return common.SendData(c, http.StatusOK, tenant)
}

// UpdateTenant handles PUT /v1/tenants/:id (platform_admin only).
func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	tenant, err := h.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return common.SendError(c, http.StatusNotFound, "NOT_FOUND", "Tenant not found", nil)
	}

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", nil)
	}

	if req.Name != "" {
		tenant.Name = req.Name
	}
	if req.YampiAlias != "" {
		tenant.YampiAlias = req.YampiAlias
	}
	if req.CommissionPercent > 0 {
		tenant.CommissionPercent = req.CommissionPercent
	}
	if req.PlanName != "" {
		tenant.PlanName = req.PlanName
	}
	if req.BillingType != "" {
		tenant.BillingType = req.BillingType
	}

	if err := h.tenantRepo.Update(ctx, tenant); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, tenant)
}

// UpdateCredentials handles PUT /v1/tenants/:id/credentials (platform_admin
// only). Only the fields present in the body change; empty string clears.
func (h *TenantHandlers) UpdateCredentials(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	tenant, err := h.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return common.SendError(c, http.StatusNotFound, "NOT_FOUND", "Tenant not found", nil)
	}

	var req struct {
		YampiToken         *string `json:"yampi_token"`
		YampiSecret        *string `json:"yampi_secret"`
		YampiOAuthToken    *string `json:"yampi_oauth_token"`
		MetaAdsAccountID   *string `json:"meta_ads_account_id"`
		MetaAdsAccessToken *string `json:"meta_ads_access_token"`
		GA4PropertyID      *string `json:"ga4_property_id"`
		GA4AccessToken     *string `json:"ga4_access_token"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", nil)
	}

	if req.YampiToken != nil {
		tenant.YampiToken = req.YampiToken
	}
	if req.YampiSecret != nil {
		tenant.YampiSecret = req.YampiSecret
	}
	if req.YampiOAuthToken != nil {
		tenant.YampiOAuthToken = req.YampiOAuthToken
	}
	if req.MetaAdsAccountID != nil {
		tenant.MetaAdsAccountID = req.MetaAdsAccountID
	}
	if req.MetaAdsAccessToken != nil {
		tenant.MetaAdsAccessToken = req.MetaAdsAccessToken
	}
	if req.GA4PropertyID != nil {
		tenant.GA4PropertyID = req.GA4PropertyID
	}
	if req.GA4AccessToken != nil {
		tenant.GA4AccessToken = req.GA4AccessToken
	}

	if err := h.tenantRepo.Update(ctx, tenant); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteTenant handles DELETE /v1/tenants/:id (platform_admin only).
func (h *TenantHandlers) DeleteTenant(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	if err := h.tenantRepo.Delete(c.Request().Context(), id); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *TenantHandlers) authorizeTenantAccess(c echo.Context, tenantID uuid.UUID) error {
	ctx := c.Request().Context()
	role, _ := common.GetRoleFromContext(ctx)
	if role == models.RolePlatformAdmin {
		return nil
	}
	callerTenant, ok := common.GetTenantIDFromContext(ctx)
	if !ok || callerTenant != tenantID {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot access another tenant")
	}
	return nil
}
