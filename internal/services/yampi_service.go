package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"conexx/internal/models"
)

const (
	yampiDefaultBaseURL = "https://api.dooki.com.br/v2"
	yampiPageSize       = 100
	// Bounded-effort policy: each sync pulls at most this many pages per
	// tenant, not a full historical backfill.
	yampiMaxPages = 10

	yampiTimestampLayout = "2006-01-02 15:04:05"
)

// YampiCredentials selects the auth scheme per tenant: the legacy
// token/secret header pair when present, otherwise an OAuth bearer token.
type YampiCredentials struct {
	Alias      string
	Token      string
	Secret     string
	OAuthToken string
}

// CredentialsForTenant extracts the storefront credentials stored on a tenant.
func CredentialsForTenant(tenant *models.Tenant) YampiCredentials {
	creds := YampiCredentials{Alias: tenant.YampiAlias}
	if tenant.YampiToken != nil {
		creds.Token = *tenant.YampiToken
	}
	if tenant.YampiSecret != nil {
		creds.Secret = *tenant.YampiSecret
	}
	if tenant.YampiOAuthToken != nil {
		creds.OAuthToken = *tenant.YampiOAuthToken
	}
	return creds
}

// YampiOrder is the raw order record as the storefront API returns it.
type YampiOrder struct {
	ID         int64   `json:"id"`
	Number     int64   `json:"number"`
	ValueTotal float64 `json:"value_total"`
	Total      float64 `json:"total"`
	CreatedAt  string  `json:"created_at"`
	Status     struct {
		Data struct {
			Alias string `json:"alias"`
		} `json:"data"`
	} `json:"status"`
	Customer struct {
		Data struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"data"`
	} `json:"customer"`
	Items struct {
		Data []struct {
			SKUTitle string `json:"sku_title"`
		} `json:"data"`
	} `json:"items"`
	Payments []struct {
		Name  string `json:"name"`
		Alias string `json:"alias"`
	} `json:"payments"`
	Coupon *struct {
		Code string `json:"code"`
	} `json:"promocode"`
}

// YampiCart is the raw abandoned-cart record.
type YampiCart struct {
	ID         int64   `json:"id"`
	Token      string  `json:"token"`
	TotalValue float64 `json:"value_total"`
	Total      float64 `json:"total"`
	CreatedAt  string  `json:"created_at"`
	Customer   struct {
		Data struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"data"`
	} `json:"customer"`
	Items struct {
		Data []struct {
			SKUTitle string `json:"sku_title"`
		} `json:"data"`
	} `json:"items"`
}

type yampiPagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// OrdersPage is one page of fetched orders plus the cursor state needed to
// decide whether another page exists.
type OrdersPage struct {
	Orders      []YampiOrder
	CurrentPage int
	TotalPages  int
}

// CartsPage is one page of abandoned carts.
type CartsPage struct {
	Carts       []YampiCart
	CurrentPage int
	TotalPages  int
}

func (p *OrdersPage) HasMore() bool {
	return p.CurrentPage < p.TotalPages
}

func (p *CartsPage) HasMore() bool {
	return p.CurrentPage < p.TotalPages
}

// YampiService fetches paginated order and cart data from the storefront API.
type YampiService interface {
	FetchOrders(ctx context.Context, creds YampiCredentials, page int) (*OrdersPage, error)
	FetchAbandonedCarts(ctx context.Context, creds YampiCredentials, page int) (*CartsPage, error)
}

type yampiService struct {
	baseURL string
	http    *http.Client
}

// NewYampiService creates a storefront API client. baseURL is overridable for
// tests; pass "" for the production endpoint.
func NewYampiService(baseURL string) YampiService {
	if baseURL == "" {
		baseURL = yampiDefaultBaseURL
	}
	return &yampiService{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (s *yampiService) FetchOrders(ctx context.Context, creds YampiCredentials, page int) (*OrdersPage, error) {
	var resp struct {
		Data []YampiOrder `json:"data"`
		Meta struct {
			Pagination yampiPagination `json:"pagination"`
		} `json:"meta"`
	}
	if err := s.get(ctx, creds, "orders", page, &resp); err != nil {
		return nil, err
	}
	return &OrdersPage{
		Orders:      resp.Data,
		CurrentPage: resp.Meta.Pagination.CurrentPage,
		TotalPages:  resp.Meta.Pagination.TotalPages,
	}, nil
}

func (s *yampiService) FetchAbandonedCarts(ctx context.Context, creds YampiCredentials, page int) (*CartsPage, error) {
	var resp struct {
		Data []YampiCart `json:"data"`
		Meta struct {
			Pagination yampiPagination `json:"pagination"`
		} `json:"meta"`
	}
	if err := s.get(ctx, creds, "checkout/carts", page, &resp); err != nil {
		return nil, err
	}
	return &CartsPage{
		Carts:       resp.Data,
		CurrentPage: resp.Meta.Pagination.CurrentPage,
		TotalPages:  resp.Meta.Pagination.TotalPages,
	}, nil
}

func (s *yampiService) get(ctx context.Context, creds YampiCredentials, resource string, page int, dest interface{}) error {
	endpoint := fmt.Sprintf("%s/%s/%s", s.baseURL, url.PathEscape(creds.Alias), resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", resource, err)
	}

	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(yampiPageSize))
	q.Set("include", "items,customer")
	req.URL.RawQuery = q.Encode()

	if creds.Token != "" && creds.Secret != "" {
		req.Header.Set("User-Token", creds.Token)
		req.Header.Set("User-Secret-Key", creds.Secret)
	} else {
		req.Header.Set("Authorization", "Bearer "+creds.OAuthToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("storefront API request failed for %s page %d: %w", resource, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("storefront API returned status %d for %s page %d", resp.StatusCode, resource, page)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode %s page %d: %w", resource, page, err)
	}
	return nil
}
