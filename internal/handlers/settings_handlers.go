package handlers

import (
	"encoding/json"
	"net/http"

	"conexx/internal/common"
	"conexx/internal/models"
	"conexx/internal/repositories"

	"github.com/labstack/echo/v4"
)

type SettingsHandlers struct {
	settingsRepo repositories.SettingsRepository
}

func NewSettingsHandlers(settingsRepo repositories.SettingsRepository) *SettingsHandlers {
	return &SettingsHandlers{settingsRepo: settingsRepo}
}

// PutAsaasConfig handles PUT /v1/settings/asaas (platform_admin only).
func (h *SettingsHandlers) PutAsaasConfig(c echo.Context) error {
	var req models.AsaasConfig
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", nil)
	}
	if req.APIKey == "" {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "api_key is required", nil)
	}
	if req.Environment != "production" && req.Environment != "sandbox" {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "environment must be production or sandbox", nil)
	}

	value, err := json.Marshal(req)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	if err := h.settingsRepo.Set(c.Request().Context(), models.SettingKeyAsaas, string(value)); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]string{"status": "updated"})
}

// GetAsaasConfig handles GET /v1/settings/asaas (platform_admin only). The API
// key is masked.
func (h *SettingsHandlers) GetAsaasConfig(c echo.Context) error {
	setting, err := h.settingsRepo.Get(c.Request().Context(), models.SettingKeyAsaas)
	if err != nil {
		return common.SendCodedError(c, err)
	}
	if setting == nil {
		return common.SendData(c, http.StatusOK, map[string]interface{}{"configured": false})
	}

	var config models.AsaasConfig
	if err := json.Unmarshal([]byte(setting.Value), &config); err != nil {
		return common.SendCodedError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]interface{}{
		"configured":  config.APIKey != "",
		"environment": config.Environment,
	})
}
