package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"conexx/internal/common"
	"conexx/internal/models"
)

const metaGraphBaseURL = "https://graph.facebook.com/v19.0"

// MetaAdsInsights is the spend block surfaced on the marketing dashboard.
type MetaAdsInsights struct {
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	DateStart   string  `json:"date_start"`
	DateStop    string  `json:"date_stop"`
}

// MetaAdsService reads campaign insights for a tenant's ad account. It never
// writes anything to the ad platform.
type MetaAdsService interface {
	FetchInsights(ctx context.Context, tenant *models.Tenant, start, end time.Time) (*MetaAdsInsights, error)
}

type metaAdsService struct {
	baseURL string
	http    *http.Client
}

func NewMetaAdsService(baseURL string) MetaAdsService {
	if baseURL == "" {
		baseURL = metaGraphBaseURL
	}
	return &metaAdsService{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// metaInsightsResponse mirrors the Graph insights shape; the numeric fields
// arrive as strings.
type metaInsightsResponse struct {
	Data []struct {
		Spend       string `json:"spend"`
		Impressions string `json:"impressions"`
		Clicks      string `json:"clicks"`
		DateStart   string `json:"date_start"`
		DateStop    string `json:"date_stop"`
	} `json:"data"`
}

func (s *metaAdsService) FetchInsights(ctx context.Context, tenant *models.Tenant, start, end time.Time) (*MetaAdsInsights, error) {
	if tenant.MetaAdsAccountID == nil || *tenant.MetaAdsAccountID == "" ||
		tenant.MetaAdsAccessToken == nil || *tenant.MetaAdsAccessToken == "" {
		return nil, common.ErrMissingCredentials
	}

	timeRange, err := json.Marshal(map[string]string{
		"since": start.Format("2006-01-02"),
		"until": end.Format("2006-01-02"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode time range: %w", err)
	}

	params := url.Values{}
	params.Set("fields", "spend,impressions,clicks")
	params.Set("time_range", string(timeRange))
	params.Set("access_token", *tenant.MetaAdsAccessToken)

	endpoint := fmt.Sprintf("%s/act_%s/insights?%s", s.baseURL, *tenant.MetaAdsAccountID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build insights request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("insights request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("meta graph returned status %d: %s", resp.StatusCode, string(data))
	}

	var parsed metaInsightsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode insights response: %w", err)
	}

	insights := &MetaAdsInsights{
		DateStart: start.Format("2006-01-02"),
		DateStop:  end.Format("2006-01-02"),
	}
	for _, row := range parsed.Data {
		spend, _ := strconv.ParseFloat(row.Spend, 64)
		impressions, _ := strconv.ParseInt(row.Impressions, 10, 64)
		clicks, _ := strconv.ParseInt(row.Clicks, 10, 64)
		insights.Spend += spend
		insights.Impressions += impressions
		insights.Clicks += clicks
		if row.DateStart != "" {
			insights.DateStart = row.DateStart
		}
		if row.DateStop != "" {
			insights.DateStop = row.DateStop
		}
	}
	return insights, nil
}
