package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"conexx/internal/caching"
	"conexx/internal/repositories"

	"github.com/google/uuid"
)

// Goal tiers the dashboard buckets tenants against, in currency units.
var GoalTiers = []float64{10_000, 100_000, 1_000_000}

// NearMilestoneRatio is the progress fraction toward the next tier at which
// the UI flags "near milestone".
const NearMilestoneRatio = 0.8

const summaryTTL = 5 * time.Minute

// Service recomputes cached tenant revenue and serves the read-side
// aggregation views consumed by the dashboard.
type Service struct {
	orderRepo    repositories.OrderRepository
	tenantRepo   repositories.TenantRepository
	cacheService caching.CacheService
}

// GoalProgress describes a tenant's position against the fixed revenue tiers.
type GoalProgress struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	Revenue       float64   `json:"revenue"`
	AchievedTier  float64   `json:"achieved_tier"` // 0 when below the first tier
	NextTier      float64   `json:"next_tier"`     // 0 when every tier is achieved
	Progress      float64   `json:"progress"`      // fraction toward NextTier
	NearMilestone bool      `json:"near_milestone"`
}

// DashboardSummary is the cached per-tenant block the dashboard home renders.
type DashboardSummary struct {
	TenantID       uuid.UUID          `json:"tenant_id"`
	Revenue        float64            `json:"revenue"`
	StatusCounts   map[string]int     `json:"status_counts"`
	MethodRevenue  map[string]float64 `json:"method_revenue"`
	WindowStart    time.Time          `json:"window_start"`
	WindowEnd      time.Time          `json:"window_end"`
	GeneratedAt    time.Time          `json:"generated_at"`
	CachedRevenue  float64            `json:"cached_revenue"`
	LastSyncAt     *time.Time         `json:"last_sync_at"`
}

func NewService(orderRepo repositories.OrderRepository, tenantRepo repositories.TenantRepository, cacheService caching.CacheService) *Service {
	return &Service{
		orderRepo:    orderRepo,
		tenantRepo:   tenantRepo,
		cacheService: cacheService,
	}
}

// RecomputeTenantRevenue rebuilds the tenant's cached gross revenue from
// scratch as the sum over approved orders, and stamps the sync time. The
// cached value is always a pure function of the orders table; nothing
// increments it in place.
func (a *Service) RecomputeTenantRevenue(ctx context.Context, tenantID uuid.UUID) (float64, error) {
	total, err := a.orderRepo.SumApprovedValue(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum approved orders: %w", err)
	}
	if err := a.tenantRepo.UpdateCachedRevenue(ctx, tenantID, total, time.Now()); err != nil {
		return 0, fmt.Errorf("failed to store cached revenue: %w", err)
	}
	if err := a.cacheService.InvalidateDashboardSummary(ctx, tenantID); err != nil {
		log.Printf("Failed to invalidate summary cache for tenant %s: %v", tenantID.String(), err)
	}
	return total, nil
}

// PeriodRevenue sums approved order values inside [start, end], inclusive at
// both ends. A nil tenantID aggregates across all tenants. An empty window
// yields 0, not an error.
func (a *Service) PeriodRevenue(ctx context.Context, tenantID *uuid.UUID, start, end time.Time) (float64, error) {
	return a.orderRepo.SumApprovedValueBetween(ctx, tenantID, start, end)
}

// PeriodCommission is the tenant's period revenue times its commission rate.
func (a *Service) PeriodCommission(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (float64, error) {
	tenant, err := a.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to load tenant: %w", err)
	}
	revenue, err := a.PeriodRevenue(ctx, &tenantID, start, end)
	if err != nil {
		return 0, err
	}
	return revenue * tenant.CommissionPercent / 100, nil
}

// ApproximateCommission estimates the cross-tenant commission for a window.
// Per-tenant revenue is not separately available for arbitrary sub-ranges in
// this view, so a blended rate (all-time commission over all-time revenue) is
// applied to the window's total revenue. It is an approximation by contract,
// not an exact sum.
func (a *Service) ApproximateCommission(ctx context.Context, start, end time.Time) (float64, error) {
	rows, err := a.orderRepo.ApprovedRevenueByTenant(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load per-tenant revenue: %w", err)
	}

	var allRevenue, allCommission float64
	for _, row := range rows {
		allRevenue += row.ApprovedRevenue
		allCommission += row.ApprovedRevenue * row.CommissionPercent / 100
	}
	if allRevenue == 0 {
		return 0, nil
	}
	blendedRate := allCommission / allRevenue

	periodRevenue, err := a.PeriodRevenue(ctx, nil, start, end)
	if err != nil {
		return 0, err
	}
	return periodRevenue * blendedRate, nil
}

// GoalProgressFor buckets the tenant's cached revenue against the fixed tiers.
func (a *Service) GoalProgressFor(ctx context.Context, tenantID uuid.UUID) (*GoalProgress, error) {
	tenant, err := a.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	return BucketGoal(tenantID, tenant.CachedGrossRevenue), nil
}

// BucketGoal is the pure tier computation, split out for reuse and testing.
func BucketGoal(tenantID uuid.UUID, revenue float64) *GoalProgress {
	progress := &GoalProgress{
		TenantID: tenantID,
		Revenue:  revenue,
	}
	for _, tier := range GoalTiers {
		if revenue >= tier {
			progress.AchievedTier = tier
			continue
		}
		progress.NextTier = tier
		progress.Progress = revenue / tier
		progress.NearMilestone = progress.Progress >= NearMilestoneRatio
		break
	}
	return progress
}

// TodaySummary serves the dashboard home block for the current day,
// redis-cached with a short TTL and invalidated after each sync.
func (a *Service) TodaySummary(ctx context.Context, tenantID uuid.UUID) (*DashboardSummary, error) {
	var cached DashboardSummary
	hit, err := a.cacheService.GetDashboardSummary(ctx, tenantID, &cached)
	if err != nil {
		log.Printf("Summary cache read failed for tenant %s: %v", tenantID.String(), err)
	}
	if hit {
		return &cached, nil
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	tenant, err := a.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	revenue, err := a.orderRepo.SumApprovedValueBetween(ctx, &tenantID, start, now)
	if err != nil {
		return nil, fmt.Errorf("failed to sum today's revenue: %w", err)
	}
	statusCounts, err := a.orderRepo.CountByStatusBetween(ctx, tenantID, start, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's orders: %w", err)
	}
	methodRevenue, err := a.orderRepo.TotalsByPaymentMethodBetween(ctx, tenantID, start, now)
	if err != nil {
		return nil, fmt.Errorf("failed to total payment methods: %w", err)
	}

	summary := &DashboardSummary{
		TenantID:      tenantID,
		Revenue:       revenue,
		StatusCounts:  statusCounts,
		MethodRevenue: methodRevenue,
		WindowStart:   start,
		WindowEnd:     now,
		GeneratedAt:   now,
		CachedRevenue: tenant.CachedGrossRevenue,
		LastSyncAt:    tenant.LastSyncAt,
	}

	if err := a.cacheService.SetDashboardSummary(ctx, tenantID, summary, summaryTTL); err != nil {
		log.Printf("Summary cache write failed for tenant %s: %v", tenantID.String(), err)
	}
	return summary, nil
}
