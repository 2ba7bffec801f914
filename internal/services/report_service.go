package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"conexx/internal/models"
	"conexx/internal/repositories"

	"github.com/google/uuid"
)

const (
	ReportKindDaily  = "daily_report"
	ReportKindWeekly = "weekly_report"
)

// RevenueReport is the payload pushed to a tenant's devices and archived.
type RevenueReport struct {
	TenantID      uuid.UUID          `json:"tenant_id"`
	Kind          string             `json:"kind"`
	Title         string             `json:"title"`
	Body          string             `json:"body"`
	Revenue       float64            `json:"revenue"`
	StatusCounts  map[string]int     `json:"status_counts"`
	MethodRevenue map[string]float64 `json:"method_revenue"`
	WindowStart   time.Time          `json:"window_start"`
	WindowEnd     time.Time          `json:"window_end"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// ReportService builds scheduled revenue reports and delivers them once per
// tenant-local day.
type ReportService interface {
	RunDuePushes(ctx context.Context) error
	SendReport(ctx context.Context, tenant *models.Tenant, settings *models.PushSettings, now time.Time) error
}

type reportService struct {
	tenantRepo      repositories.TenantRepository
	pushRepo        repositories.PushRepository
	orderRepo       repositories.OrderRepository
	notificationSvc NotificationService
	archiveSvc      ReportArchiveService
}

func NewReportService(
	tenantRepo repositories.TenantRepository,
	pushRepo repositories.PushRepository,
	orderRepo repositories.OrderRepository,
	notificationSvc NotificationService,
	archiveSvc ReportArchiveService,
) ReportService {
	return &reportService{
		tenantRepo:      tenantRepo,
		pushRepo:        pushRepo,
		orderRepo:       orderRepo,
		notificationSvc: notificationSvc,
		archiveSvc:      archiveSvc,
	}
}

// RunDuePushes walks every active tenant and sends its report when the
// configured send time (in the tenant's timezone) has passed and nothing was
// sent today. The sweep runs more often than reports go out, so the PushLog
// check is what keeps sends to one per day.
func (s *reportService) RunDuePushes(ctx context.Context) error {
	tenants, err := s.tenantRepo.List(ctx, 1000, 0)
	if err != nil {
		return fmt.Errorf("failed to list tenants for report sweep: %w", err)
	}

	now := time.Now()
	for _, tenant := range tenants {
		if tenant.Status != models.TenantStatusActive {
			continue
		}
		settings, err := s.pushRepo.GetSettings(ctx, tenant.ID)
		if err != nil {
			log.Printf("Failed to load push settings for tenant %s: %v", tenant.ID.String(), err)
			continue
		}
		if settings == nil || !settings.Enabled {
			continue
		}
		if err := s.SendReport(ctx, tenant, settings, now); err != nil {
			log.Printf("Report push failed for tenant %s: %v", tenant.ID.String(), err)
		}
	}
	return nil
}

// SendReport delivers the tenant's report if it is due at `now`, and is a
// no-op otherwise.
func (s *reportService) SendReport(ctx context.Context, tenant *models.Tenant, settings *models.PushSettings, now time.Time) error {
	location, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q for tenant %s, using UTC", settings.Timezone, tenant.ID.String())
		location = time.UTC
	}
	localNow := now.In(location)

	var sendHour, sendMinute int
	if _, err := fmt.Sscanf(settings.SendTime, "%d:%d", &sendHour, &sendMinute); err != nil {
		return fmt.Errorf("invalid send_time %q: %w", settings.SendTime, err)
	}

	localMidnight := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, location)
	sendMoment := localMidnight.Add(time.Duration(sendHour)*time.Hour + time.Duration(sendMinute)*time.Minute)
	if localNow.Before(sendMoment) {
		return nil
	}

	kind := ReportKindDaily
	windowStart := localMidnight
	if settings.Scope == "weekly" {
		if localNow.Weekday() != time.Monday {
			return nil
		}
		kind = ReportKindWeekly
		windowStart = localMidnight.AddDate(0, 0, -7)
	}

	sent, err := s.pushRepo.LogExistsSince(ctx, tenant.ID, kind, localMidnight)
	if err != nil {
		return fmt.Errorf("failed to check push log: %w", err)
	}
	if sent {
		return nil
	}

	report, err := s.buildReport(ctx, tenant, kind, windowStart, localNow)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	s.notificationSvc.PushToTenant(ctx, tenant.ID, report)

	entry := &models.PushLog{
		ID:       uuid.New(),
		TenantID: tenant.ID,
		Kind:     kind,
		Payload:  string(payload),
		SentAt:   now,
	}
	if err := s.pushRepo.AppendLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to append push log: %w", err)
	}

	// Archive failures don't block the send; the log row already exists.
	if _, err := s.archiveSvc.ArchiveReport(ctx, tenant.ID, kind, payload); err != nil {
		log.Printf("Failed to archive report for tenant %s: %v", tenant.ID.String(), err)
	}
	return nil
}

func (s *reportService) buildReport(ctx context.Context, tenant *models.Tenant, kind string, start, end time.Time) (*RevenueReport, error) {
	revenue, err := s.orderRepo.SumApprovedValueBetween(ctx, &tenant.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to sum report revenue: %w", err)
	}
	statusCounts, err := s.orderRepo.CountByStatusBetween(ctx, tenant.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count report orders: %w", err)
	}
	methodRevenue, err := s.orderRepo.TotalsByPaymentMethodBetween(ctx, tenant.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to total report payment methods: %w", err)
	}

	title := "Relatório diário de vendas"
	if kind == ReportKindWeekly {
		title = "Relatório semanal de vendas"
	}
	return &RevenueReport{
		TenantID:      tenant.ID,
		Kind:          kind,
		Title:         title,
		Body:          fmt.Sprintf("%s: R$ %.2f em vendas aprovadas", tenant.Name, revenue),
		Revenue:       revenue,
		StatusCounts:  statusCounts,
		MethodRevenue: methodRevenue,
		WindowStart:   start,
		WindowEnd:     end,
		GeneratedAt:   time.Now(),
	}, nil
}
