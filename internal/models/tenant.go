package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TenantStatusActive = "active"
	TenantStatusFrozen = "frozen"
)

type Tenant struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	Name               string     `json:"name" db:"name"`
	YampiAlias         string     `json:"yampi_alias" db:"yampi_alias"`
	YampiToken         *string    `json:"-" db:"yampi_token"`
	YampiSecret        *string    `json:"-" db:"yampi_secret"`
	YampiOAuthToken    *string    `json:"-" db:"yampi_oauth_token"`
	MetaAdsAccountID   *string    `json:"meta_ads_account_id" db:"meta_ads_account_id"`
	MetaAdsAccessToken *string    `json:"-" db:"meta_ads_access_token"`
	GA4PropertyID      *string    `json:"ga4_property_id" db:"ga4_property_id"`
	GA4AccessToken     *string    `json:"-" db:"ga4_access_token"`
	CommissionPercent  float64    `json:"commission_percent" db:"commission_percent"`
	PlanName           string     `json:"plan_name" db:"plan_name"`
	BillingType        string     `json:"billing_type" db:"billing_type"` // monthly, upfront
	Status             string     `json:"status" db:"status"`             // active, frozen
	CachedGrossRevenue float64    `json:"cached_gross_revenue" db:"cached_gross_revenue"`
	LastSyncAt         *time.Time `json:"last_sync_at" db:"last_sync_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// HasYampiCredentials reports whether the tenant can authenticate against the
// storefront API, via either the legacy token/secret pair or an OAuth token.
func (t *Tenant) HasYampiCredentials() bool {
	if t.YampiAlias == "" {
		return false
	}
	if t.YampiToken != nil && *t.YampiToken != "" && t.YampiSecret != nil && *t.YampiSecret != "" {
		return true
	}
	return t.YampiOAuthToken != nil && *t.YampiOAuthToken != ""
}
