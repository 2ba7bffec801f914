package models

import "time"

// PlatformSetting is a key/value blob for platform-wide configuration,
// e.g. the payment gateway API key shared by all tenants.
type PlatformSetting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"` // JSON blob
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Well-known platform setting keys.
const (
	SettingKeyAsaas = "asaas_config"
)

// AsaasConfig is the decoded value under SettingKeyAsaas.
type AsaasConfig struct {
	APIKey      string `json:"api_key"`
	Environment string `json:"environment"` // sandbox, production
}
