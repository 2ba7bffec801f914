package handlers

import (
	"net/http"
	"strconv"

	"conexx/internal/common"
	"conexx/internal/repositories"

	"github.com/labstack/echo/v4"
)

type NotificationHandlers struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationHandlers(notificationRepo repositories.NotificationRepository) *NotificationHandlers {
	return &NotificationHandlers{notificationRepo: notificationRepo}
}

// List handles GET /v1/notifications.
func (h *NotificationHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	notifications, err := h.notificationRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	unread, err := h.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
		"limit":         limit,
		"offset":        offset,
	})
}

// MarkRead handles POST /v1/notifications/:id/read.
func (h *NotificationHandlers) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}
	notificationID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	if err := h.notificationRepo.MarkRead(ctx, userID, notificationID); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]string{"status": "read"})
}

// MarkAllRead handles POST /v1/notifications/read-all.
func (h *NotificationHandlers) MarkAllRead(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	if err := h.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]string{"status": "read"})
}
