package handlers

import (
	"net/http"
	"strconv"

	"conexx/internal/common"
	"conexx/internal/repositories"

	"github.com/labstack/echo/v4"
)

type CouponHandlers struct {
	couponRepo repositories.CouponRepository
}

func NewCouponHandlers(couponRepo repositories.CouponRepository) *CouponHandlers {
	return &CouponHandlers{couponRepo: couponRepo}
}

// List handles GET /v1/coupons, the codes observed on synced orders.
func (h *CouponHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := resolveTenantID(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	coupons, err := h.couponRepo.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]interface{}{
		"coupons": coupons,
		"limit":   limit,
		"offset":  offset,
	})
}
