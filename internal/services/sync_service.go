package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"conexx/internal/analytics"
	"conexx/internal/caching"
	"conexx/internal/common"
	"conexx/internal/repositories"

	"conexx/internal/models"

	"github.com/google/uuid"
)

// syncLeaseTTL bounds how long a crashed sync can keep a tenant locked.
const syncLeaseTTL = 5 * time.Minute

// SyncResult summarizes one tenant's sync pass.
type SyncResult struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	OrdersSynced  int       `json:"orders_synced"`
	NewSales      int       `json:"new_sales"`
	CartsSynced   int       `json:"carts_synced"`
	GrossRevenue  float64   `json:"gross_revenue"`
	PagesFetched  int       `json:"pages_fetched"`
}

// SyncService drives the fetch → upsert → recompute pipeline per tenant.
type SyncService interface {
	SyncTenant(ctx context.Context, tenantID uuid.UUID) (*SyncResult, error)
	SyncAll(ctx context.Context) error
}

type syncService struct {
	tenantRepo      repositories.TenantRepository
	orderRepo       repositories.OrderRepository
	checkoutRepo    repositories.AbandonedCheckoutRepository
	couponRepo      repositories.CouponRepository
	yampiSvc        YampiService
	notificationSvc NotificationService
	analyticsSvc    *analytics.Service
	cacheSvc        caching.CacheService
}

func NewSyncService(
	tenantRepo repositories.TenantRepository,
	orderRepo repositories.OrderRepository,
	checkoutRepo repositories.AbandonedCheckoutRepository,
	couponRepo repositories.CouponRepository,
	yampiSvc YampiService,
	notificationSvc NotificationService,
	analyticsSvc *analytics.Service,
	cacheSvc caching.CacheService,
) SyncService {
	return &syncService{
		tenantRepo:      tenantRepo,
		orderRepo:       orderRepo,
		checkoutRepo:    checkoutRepo,
		couponRepo:      couponRepo,
		yampiSvc:        yampiSvc,
		notificationSvc: notificationSvc,
		analyticsSvc:    analyticsSvc,
		cacheSvc:        cacheSvc,
	}
}

// SyncTenant runs one bounded sync pass for a tenant. The redis lease keeps a
// manual trigger from overlapping the timer-driven pass; without it the
// read-then-upsert sale detection could fire twice for the same order.
func (s *syncService) SyncTenant(ctx context.Context, tenantID uuid.UUID) (*SyncResult, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant %s: %w", tenantID.String(), err)
	}
	if !tenant.HasYampiCredentials() {
		return nil, common.ErrMissingCredentials
	}

	acquired, err := s.cacheSvc.AcquireSyncLease(ctx, tenantID, syncLeaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lease: %w", err)
	}
	if !acquired {
		return nil, common.ErrSyncInProgress
	}
	defer func() {
		if err := s.cacheSvc.ReleaseSyncLease(context.WithoutCancel(ctx), tenantID); err != nil {
			log.Printf("Failed to release sync lease for tenant %s: %v", tenantID.String(), err)
		}
	}()

	creds := CredentialsForTenant(tenant)
	result := &SyncResult{TenantID: tenantID}

	if err := s.syncOrders(ctx, tenantID, creds, result); err != nil {
		return nil, err
	}
	if err := s.syncCarts(ctx, tenantID, creds, result); err != nil {
		return nil, err
	}

	revenue, err := s.analyticsSvc.RecomputeTenantRevenue(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	result.GrossRevenue = revenue

	return result, nil
}

func (s *syncService) syncOrders(ctx context.Context, tenantID uuid.UUID, creds YampiCredentials, result *SyncResult) error {
	for page := 1; page <= yampiMaxPages; page++ {
		// A fetch failure aborts the remaining pages for this tenant.
		fetched, err := s.yampiSvc.FetchOrders(ctx, creds, page)
		if err != nil {
			return err
		}
		result.PagesFetched++

		for i := range fetched.Orders {
			mapped := MapOrder(tenantID, &fetched.Orders[i])

			previous, err := s.orderRepo.GetByExternalID(ctx, tenantID, mapped.ExternalID)
			if err != nil {
				return fmt.Errorf("failed to read order %s: %w", mapped.ExternalID, err)
			}

			newSale := mapped.Status == models.OrderStatusApproved &&
				(previous == nil || previous.Status != models.OrderStatusApproved)

			if err := s.orderRepo.Upsert(ctx, mapped); err != nil {
				return fmt.Errorf("failed to upsert order %s: %w", mapped.ExternalID, err)
			}
			result.OrdersSynced++

			// Coupon codes are only known through the orders that used them;
			// record each code so the dashboard can list them.
			if mapped.CouponCode != nil && *mapped.CouponCode != "" {
				coupon := &models.Coupon{
					ID:       uuid.New(),
					TenantID: tenantID,
					Code:     *mapped.CouponCode,
					Active:   true,
				}
				if err := s.couponRepo.Upsert(ctx, coupon); err != nil {
					log.Printf("Failed to record coupon %s: %v", coupon.Code, err)
				}
			}

			if newSale {
				result.NewSales++
				if err := s.notificationSvc.NotifySale(ctx, tenantID, mapped); err != nil {
					log.Printf("Failed to dispatch sale notification for order %s: %v", mapped.ExternalID, err)
				}
				if mapped.CustomerEmail != nil {
					if err := s.checkoutRepo.MarkRecoveredByEmail(ctx, tenantID, *mapped.CustomerEmail); err != nil {
						log.Printf("Failed to flag recovered carts for %s: %v", *mapped.CustomerEmail, err)
					}
				}
			}
		}

		if !fetched.HasMore() {
			break
		}
	}
	return nil
}

func (s *syncService) syncCarts(ctx context.Context, tenantID uuid.UUID, creds YampiCredentials, result *SyncResult) error {
	for page := 1; page <= yampiMaxPages; page++ {
		fetched, err := s.yampiSvc.FetchAbandonedCarts(ctx, creds, page)
		if err != nil {
			return err
		}

		for i := range fetched.Carts {
			mapped := MapCart(tenantID, &fetched.Carts[i])
			if err := s.checkoutRepo.Upsert(ctx, mapped); err != nil {
				return fmt.Errorf("failed to upsert abandoned cart %s: %w", mapped.ExternalID, err)
			}
			result.CartsSynced++
		}

		if !fetched.HasMore() {
			break
		}
	}
	return nil
}

// SyncAll snapshots the tenant list and synchronizes each sequentially. One
// tenant's failure is logged and the loop moves on; there is no retry, the
// next scheduled pass polls again.
func (s *syncService) SyncAll(ctx context.Context) error {
	tenants, err := s.tenantRepo.List(ctx, 1000, 0)
	if err != nil {
		return fmt.Errorf("failed to list tenants for sync: %w", err)
	}

	for _, tenant := range tenants {
		if tenant.Status != models.TenantStatusActive {
			continue
		}
		if !tenant.HasYampiCredentials() {
			continue
		}
		if _, err := s.SyncTenant(ctx, tenant.ID); err != nil {
			log.Printf("Sync failed for tenant %s (%s): %v", tenant.Name, tenant.ID.String(), err)
		}
	}
	return nil
}
