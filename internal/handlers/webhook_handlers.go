package handlers

import (
	"net/http"

	"conexx/internal/common"
	"conexx/internal/services"

	"github.com/labstack/echo/v4"
)

type WebhookHandlers struct {
	subscriptionService services.SubscriptionService
	webhookToken        string
}

func NewWebhookHandlers(subscriptionService services.SubscriptionService, webhookToken string) *WebhookHandlers {
	return &WebhookHandlers{
		subscriptionService: subscriptionService,
		webhookToken:        webhookToken,
	}
}

// HandleAsaas handles POST /v1/webhooks/asaas. The gateway authenticates with
// the asaas-access-token header configured on its side. Unknown events return
// 200 so Asaas stops retrying them.
func (h *WebhookHandlers) HandleAsaas(c echo.Context) error {
	if h.webhookToken != "" && c.Request().Header.Get("asaas-access-token") != h.webhookToken {
		return common.SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid webhook token", nil)
	}

	var event services.AsaasWebhookEvent
	if err := c.Bind(&event); err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid webhook payload", nil)
	}
	if event.Event == "" || event.Payment.ID == "" {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Missing event or payment id", nil)
	}

	if err := h.subscriptionService.HandleAsaasWebhook(c.Request().Context(), &event); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]string{"status": "processed"})
}
