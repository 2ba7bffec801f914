package handlers

import (
	"net/http"

	"conexx/internal/common"
	"conexx/internal/models"
	"conexx/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type SyncHandlers struct {
	syncService services.SyncService
}

func NewSyncHandlers(syncService services.SyncService) *SyncHandlers {
	return &SyncHandlers{syncService: syncService}
}

// SyncAll handles POST /v1/sync (platform_admin only).
func (h *SyncHandlers) SyncAll(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.syncService.SyncAll(ctx); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]string{"status": "completed"})
}

// SyncTenant handles POST /v1/sync/:tenantId. A tenant user can only trigger
// its own sync; platform admins can trigger any.
func (h *SyncHandlers) SyncTenant(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := common.ValidateUUID(c.Param("tenantId"), "tenantId")
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	role, _ := common.GetRoleFromContext(ctx)
	if role != models.RolePlatformAdmin {
		callerTenant, ok := common.GetTenantIDFromContext(ctx)
		if !ok || callerTenant != tenantID {
			return common.SendError(c, http.StatusForbidden, "FORBIDDEN", "Cannot sync another tenant", nil)
		}
	}

	result, err := h.syncService.SyncTenant(ctx, tenantID)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, result)
}

// resolveTenantID returns the tenant a request operates on: the caller's own
// tenant, or the tenant_id query parameter for platform admins.
func resolveTenantID(c echo.Context) (uuid.UUID, error) {
	ctx := c.Request().Context()

	if tenantID, ok := common.GetTenantIDFromContext(ctx); ok {
		return tenantID, nil
	}

	role, _ := common.GetRoleFromContext(ctx)
	if role == models.RolePlatformAdmin {
		if param := c.QueryParam("tenant_id"); param != "" {
			return common.ValidateUUID(param, "tenant_id")
		}
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
	}
	return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
}
