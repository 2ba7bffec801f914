package handlers

import (
	"net/http"
	"time"

	"conexx/internal/analytics"
	"conexx/internal/common"
	"conexx/internal/models"
	"conexx/internal/repositories"
	"conexx/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type MetricsHandlers struct {
	analyticsSvc *analytics.Service
	tenantRepo   repositories.TenantRepository
	metaAdsSvc   services.MetaAdsService
	ga4Svc       services.GA4Service
}

func NewMetricsHandlers(
	analyticsSvc *analytics.Service,
	tenantRepo repositories.TenantRepository,
	metaAdsSvc services.MetaAdsService,
	ga4Svc services.GA4Service,
) *MetricsHandlers {
	return &MetricsHandlers{
		analyticsSvc: analyticsSvc,
		tenantRepo:   tenantRepo,
		metaAdsSvc:   metaAdsSvc,
		ga4Svc:       ga4Svc,
	}
}

// Revenue handles GET /v1/metrics/revenue?start&end[&tenant_id].
// A platform admin without tenant_id gets the cross-tenant total.
func (h *MetricsHandlers) Revenue(c echo.Context) error {
	ctx := c.Request().Context()

	start, end, err := common.ParseDateRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	var tenantID *uuid.UUID
	if id, ok := common.GetTenantIDFromContext(ctx); ok {
		tenantID = &id
	} else if param := c.QueryParam("tenant_id"); param != "" {
		id, err := common.ValidateUUID(param, "tenant_id")
		if err != nil {
			return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		}
		tenantID = &id
	}

	revenue, err := h.analyticsSvc.PeriodRevenue(ctx, tenantID, start, end)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]interface{}{
		"revenue": revenue,
		"start":   start,
		"end":     end,
	})
}

// Commission handles GET /v1/metrics/commission?start&end. Tenant users get
// their exact commission; platform admins get the blended cross-tenant
// approximation.
func (h *MetricsHandlers) Commission(c echo.Context) error {
	ctx := c.Request().Context()

	start, end, err := common.ParseDateRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	if tenantID, ok := common.GetTenantIDFromContext(ctx); ok {
		commission, err := h.analyticsSvc.PeriodCommission(ctx, tenantID, start, end)
		if err != nil {
			return common.SendCodedError(c, err)
		}
		return common.SendData(c, http.StatusOK, map[string]interface{}{
			"commission": commission,
			"start":      start,
			"end":        end,
		})
	}

	commission, err := h.analyticsSvc.ApproximateCommission(ctx, start, end)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]interface{}{
		"commission":  commission,
		"approximate": true,
		"start":       start,
		"end":         end,
	})
}

// Goals handles GET /v1/metrics/goals.
func (h *MetricsHandlers) Goals(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := resolveTenantID(c)
	if err != nil {
		return err
	}
	progress, err := h.analyticsSvc.GoalProgressFor(ctx, tenantID)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, progress)
}

// Summary handles GET /v1/metrics/summary, the cached dashboard block.
func (h *MetricsHandlers) Summary(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := resolveTenantID(c)
	if err != nil {
		return err
	}
	summary, err := h.analyticsSvc.TodaySummary(ctx, tenantID)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, summary)
}

// Ads handles GET /v1/metrics/ads?start&end.
func (h *MetricsHandlers) Ads(c echo.Context) error {
	return h.externalMetrics(c, func(ctx echo.Context, tenant *models.Tenant, start, end time.Time) (interface{}, error) {
		return h.metaAdsSvc.FetchInsights(ctx.Request().Context(), tenant, start, end)
	})
}

// GA4 handles GET /v1/metrics/ga4?start&end.
func (h *MetricsHandlers) GA4(c echo.Context) error {
	return h.externalMetrics(c, func(ctx echo.Context, tenant *models.Tenant, start, end time.Time) (interface{}, error) {
		return h.ga4Svc.RunReport(ctx.Request().Context(), tenant, start, end)
	})
}

func (h *MetricsHandlers) externalMetrics(c echo.Context, fetch func(echo.Context, *models.Tenant, time.Time, time.Time) (interface{}, error)) error {
	start, end, err := common.ParseDateRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	tenantID, err := resolveTenantID(c)
	if err != nil {
		return err
	}
	tenant, err := h.tenantRepo.GetByID(c.Request().Context(), tenantID)
	if err != nil {
		return common.SendCodedError(c, err)
	}

	result, err := fetch(c, tenant, start, end)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, result)
}
