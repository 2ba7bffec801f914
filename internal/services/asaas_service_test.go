package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"conexx/internal/common"
	"conexx/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func asaasSettingsRepo(apiKey string) *MockSettingsRepository {
	repo := new(MockSettingsRepository)
	value, _ := json.Marshal(models.AsaasConfig{APIKey: apiKey, Environment: "sandbox"})
	repo.On("Get", mock.Anything, models.SettingKeyAsaas).
		Return(&models.PlatformSetting{Key: models.SettingKeyAsaas, Value: string(value)}, nil)
	return repo
}

func TestAsaasCreateSubscription(t *testing.T) {
	var gotToken, gotPath string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("access_token")
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "sub_abc", "customer": "cus_123", "value": 99.9, "cycle": "MONTHLY", "status": "ACTIVE"}`)
	}))
	defer server.Close()

	svc := NewAsaasServiceWithBaseURL(asaasSettingsRepo("key-1"), server.URL)

	dueDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	sub, err := svc.CreateSubscription(context.Background(), "cus_123", 99.90, dueDate)

	assert.NoError(t, err)
	assert.Equal(t, "sub_abc", sub.ID)
	assert.Equal(t, "key-1", gotToken)
	assert.Equal(t, "/subscriptions", gotPath)
	assert.Equal(t, "cus_123", gotBody["customer"])
	assert.Equal(t, "MONTHLY", gotBody["cycle"])
	assert.Equal(t, "2026-04-01", gotBody["nextDueDate"])
}

func TestAsaasCancelSubscription(t *testing.T) {
	var gotMethod, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"deleted": true}`)
	}))
	defer server.Close()

	svc := NewAsaasServiceWithBaseURL(asaasSettingsRepo("key-1"), server.URL)

	err := svc.CancelSubscription(context.Background(), "sub_abc")
	assert.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/subscriptions/sub_abc", gotPath)
}

func TestAsaasCreateCharge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "pay_xyz", "customer": "cus_123", "value": 999.0, "status": "PENDING"}`)
	}))
	defer server.Close()

	svc := NewAsaasServiceWithBaseURL(asaasSettingsRepo("key-1"), server.URL)

	payment, err := svc.CreateCharge(context.Background(), "cus_123", 999.00, time.Now().AddDate(0, 0, 7))
	assert.NoError(t, err)
	assert.Equal(t, "pay_xyz", payment.ID)
}

func TestAsaasNotConfigured(t *testing.T) {
	repo := new(MockSettingsRepository)
	repo.On("Get", mock.Anything, models.SettingKeyAsaas).Return(nil, nil)

	svc := NewAsaasService(repo)
	_, err := svc.CreateSubscription(context.Background(), "cus_123", 10, time.Now())
	assert.ErrorIs(t, err, common.ErrGatewayNotConfigured)
}

func TestAsaasEmptyAPIKey(t *testing.T) {
	repo := new(MockSettingsRepository)
	value, _ := json.Marshal(models.AsaasConfig{APIKey: "", Environment: "production"})
	repo.On("Get", mock.Anything, models.SettingKeyAsaas).
		Return(&models.PlatformSetting{Key: models.SettingKeyAsaas, Value: string(value)}, nil)

	svc := NewAsaasService(repo)
	err := svc.CancelSubscription(context.Background(), "sub_abc")
	assert.ErrorIs(t, err, common.ErrGatewayNotConfigured)
}

func TestAsaasGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errors": [{"code": "invalid_customer"}]}`)
	}))
	defer server.Close()

	svc := NewAsaasServiceWithBaseURL(asaasSettingsRepo("key-1"), server.URL)

	_, err := svc.CreateCharge(context.Background(), "cus_bad", 10, time.Now())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "invalid_customer")
}
