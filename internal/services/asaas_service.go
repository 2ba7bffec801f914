package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"conexx/internal/common"
	"conexx/internal/models"
	"conexx/internal/repositories"
)

const (
	asaasProductionBaseURL = "https://api.asaas.com/v3"
	asaasSandboxBaseURL    = "https://api-sandbox.asaas.com/v3"
)

// AsaasSubscription is the gateway's subscription record.
type AsaasSubscription struct {
	ID          string  `json:"id"`
	Customer    string  `json:"customer"`
	Value       float64 `json:"value"`
	Cycle       string  `json:"cycle"`
	Status      string  `json:"status"`
	NextDueDate string  `json:"nextDueDate"`
}

// AsaasPayment is the gateway's one-off charge record.
type AsaasPayment struct {
	ID          string  `json:"id"`
	Customer    string  `json:"customer"`
	Value       float64 `json:"value"`
	Status      string  `json:"status"`
	DueDate     string  `json:"dueDate"`
	InvoiceURL  string  `json:"invoiceUrl"`
	BillingType string  `json:"billingType"`
}

// AsaasService talks to the billing gateway with the single platform-wide API
// key stored in platform_settings (not per tenant).
type AsaasService interface {
	CreateSubscription(ctx context.Context, customerID string, value float64, nextDueDate time.Time) (*AsaasSubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	CreateCharge(ctx context.Context, customerID string, value float64, dueDate time.Time) (*AsaasPayment, error)
}

type asaasService struct {
	settingsRepo repositories.SettingsRepository
	baseURL      string // overrides environment resolution when set (tests)
	http         *http.Client
}

func NewAsaasService(settingsRepo repositories.SettingsRepository) AsaasService {
	return &asaasService{
		settingsRepo: settingsRepo,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// NewAsaasServiceWithBaseURL pins the gateway endpoint, for tests.
func NewAsaasServiceWithBaseURL(settingsRepo repositories.SettingsRepository, baseURL string) AsaasService {
	svc := NewAsaasService(settingsRepo).(*asaasService)
	svc.baseURL = baseURL
	return svc
}

func (s *asaasService) config(ctx context.Context) (*models.AsaasConfig, string, error) {
	setting, err := s.settingsRepo.Get(ctx, models.SettingKeyAsaas)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load gateway settings: %w", err)
	}
	if setting == nil {
		return nil, "", common.ErrGatewayNotConfigured
	}

	var config models.AsaasConfig
	if err := json.Unmarshal([]byte(setting.Value), &config); err != nil {
		return nil, "", fmt.Errorf("failed to decode gateway settings: %w", err)
	}
	if config.APIKey == "" {
		return nil, "", common.ErrGatewayNotConfigured
	}

	baseURL := s.baseURL
	if baseURL == "" {
		baseURL = asaasProductionBaseURL
		if config.Environment == "sandbox" {
			baseURL = asaasSandboxBaseURL
		}
	}
	return &config, baseURL, nil
}

func (s *asaasService) CreateSubscription(ctx context.Context, customerID string, value float64, nextDueDate time.Time) (*AsaasSubscription, error) {
	body := map[string]interface{}{
		"customer":    customerID,
		"billingType": "UNDEFINED",
		"value":       value,
		"nextDueDate": nextDueDate.Format("2006-01-02"),
		"cycle":       "MONTHLY",
	}

	var sub AsaasSubscription
	if err := s.request(ctx, http.MethodPost, "/subscriptions", body, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *asaasService) CancelSubscription(ctx context.Context, subscriptionID string) error {
	return s.request(ctx, http.MethodDelete, "/subscriptions/"+subscriptionID, nil, nil)
}

func (s *asaasService) CreateCharge(ctx context.Context, customerID string, value float64, dueDate time.Time) (*AsaasPayment, error) {
	body := map[string]interface{}{
		"customer":    customerID,
		"billingType": "UNDEFINED",
		"value":       value,
		"dueDate":     dueDate.Format("2006-01-02"),
	}

	var payment AsaasPayment
	if err := s.request(ctx, http.MethodPost, "/payments", body, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *asaasService) request(ctx context.Context, method, path string, body interface{}, dest interface{}) error {
	config, baseURL, err := s.config(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal gateway request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("access_token", config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(data))
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w", err)
		}
	}
	return nil
}
