package handlers

import (
	"net/http"
	"strconv"

	"conexx/internal/common"
	"conexx/internal/repositories"

	"github.com/labstack/echo/v4"
)

type OrderHandlers struct {
	orderRepo    repositories.OrderRepository
	checkoutRepo repositories.AbandonedCheckoutRepository
}

func NewOrderHandlers(orderRepo repositories.OrderRepository, checkoutRepo repositories.AbandonedCheckoutRepository) *OrderHandlers {
	return &OrderHandlers{orderRepo: orderRepo, checkoutRepo: checkoutRepo}
}

// ListOrders handles GET /v1/orders, newest first.
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := resolveTenantID(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	orders, err := h.orderRepo.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

// ListCheckouts handles GET /v1/checkouts, the abandoned carts captured
// during sync, most recently abandoned first.
func (h *OrderHandlers) ListCheckouts(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := resolveTenantID(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	checkouts, err := h.checkoutRepo.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]interface{}{
		"checkouts": checkouts,
		"limit":     limit,
		"offset":    offset,
	})
}
