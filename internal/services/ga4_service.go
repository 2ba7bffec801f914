package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"conexx/internal/common"
	"conexx/internal/models"
)

const ga4BaseURL = "https://analyticsdata.googleapis.com/v1beta"

// GA4Report is the traffic block surfaced on the marketing dashboard.
type GA4Report struct {
	Sessions    int64 `json:"sessions"`
	ActiveUsers int64 `json:"active_users"`
}

// GA4Service runs read-only reports against a tenant's Analytics property.
type GA4Service interface {
	RunReport(ctx context.Context, tenant *models.Tenant, start, end time.Time) (*GA4Report, error)
}

type ga4Service struct {
	baseURL string
	http    *http.Client
}

func NewGA4Service(baseURL string) GA4Service {
	if baseURL == "" {
		baseURL = ga4BaseURL
	}
	return &ga4Service{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type ga4ReportResponse struct {
	Rows []struct {
		MetricValues []struct {
			Value string `json:"value"`
		} `json:"metricValues"`
	} `json:"rows"`
}

func (s *ga4Service) RunReport(ctx context.Context, tenant *models.Tenant, start, end time.Time) (*GA4Report, error) {
	if tenant.GA4PropertyID == nil || *tenant.GA4PropertyID == "" ||
		tenant.GA4AccessToken == nil || *tenant.GA4AccessToken == "" {
		return nil, common.ErrMissingCredentials
	}

	body := map[string]interface{}{
		"dateRanges": []map[string]string{{
			"startDate": start.Format("2006-01-02"),
			"endDate":   end.Format("2006-01-02"),
		}},
		"metrics": []map[string]string{
			{"name": "sessions"},
			{"name": "activeUsers"},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/properties/%s:runReport", s.baseURL, *tenant.GA4PropertyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build report request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+*tenant.GA4AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("analytics api returned status %d: %s", resp.StatusCode, string(data))
	}

	var parsed ga4ReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode report response: %w", err)
	}

	report := &GA4Report{}
	for _, row := range parsed.Rows {
		if len(row.MetricValues) > 0 {
			sessions, _ := strconv.ParseInt(row.MetricValues[0].Value, 10, 64)
			report.Sessions += sessions
		}
		if len(row.MetricValues) > 1 {
			users, _ := strconv.ParseInt(row.MetricValues[1].Value, 10, 64)
			report.ActiveUsers += users
		}
	}
	return report, nil
}
