package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"conexx/internal/models"
	"conexx/internal/repositories"

	"github.com/google/uuid"
)

// Days before expiry at which renewal warnings go out.
var expiryWarningDays = []int{7, 3, 1}

// CreateSubscriptionInput carries the plan parameters for a new subscription.
type CreateSubscriptionInput struct {
	PlanName        string  `json:"plan_name"`
	Amount          float64 `json:"amount"`
	BillingType     string  `json:"billing_type"`
	AsaasCustomerID string  `json:"asaas_customer_id"`
}

// AsaasWebhookEvent is the payload Asaas POSTs to the webhook endpoint.
type AsaasWebhookEvent struct {
	Event   string `json:"event"`
	Payment struct {
		ID           string  `json:"id"`
		Subscription string  `json:"subscription"`
		Customer     string  `json:"customer"`
		Value        float64 `json:"value"`
		DueDate      string  `json:"dueDate"`
	} `json:"payment"`
}

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, tenantID uuid.UUID, input CreateSubscriptionInput) (*models.Subscription, error)
	CancelSubscription(ctx context.Context, tenantID, subscriptionID uuid.UUID) error
	ListSubscriptions(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Subscription, error)
	CheckExpirations(ctx context.Context) error
	HandleAsaasWebhook(ctx context.Context, event *AsaasWebhookEvent) error
}

type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
	paymentRepo      repositories.PaymentRepository
	tenantRepo       repositories.TenantRepository
	userRepo         repositories.UserRepository
	asaasSvc         AsaasService
	notificationSvc  NotificationService
}

func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	paymentRepo repositories.PaymentRepository,
	tenantRepo repositories.TenantRepository,
	userRepo repositories.UserRepository,
	asaasSvc AsaasService,
	notificationSvc NotificationService,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		tenantRepo:       tenantRepo,
		userRepo:         userRepo,
		asaasSvc:         asaasSvc,
		notificationSvc:  notificationSvc,
	}
}

// CreateSubscription registers the plan with the gateway and persists the
// local row. Monthly plans become a recurring Asaas subscription; upfront
// plans become a single charge covering twelve months.
func (s *subscriptionService) CreateSubscription(ctx context.Context, tenantID uuid.UUID, input CreateSubscriptionInput) (*models.Subscription, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	now := time.Now()
	subscription := &models.Subscription{
		ID:          uuid.New(),
		TenantID:    tenantID,
		PlanName:    input.PlanName,
		Amount:      input.Amount,
		BillingType: input.BillingType,
		Status:      models.SubscriptionStatusActive,
		StartDate:   now,
	}

	switch input.BillingType {
	case models.BillingTypeMonthly:
		endDate := now.AddDate(0, 1, 0)
		subscription.EndDate = &endDate

		gatewaySub, err := s.asaasSvc.CreateSubscription(ctx, input.AsaasCustomerID, input.Amount, endDate)
		if err != nil {
			return nil, err
		}
		subscription.AsaasSubscriptionID = &gatewaySub.ID

	case models.BillingTypeUpfront:
		endDate := now.AddDate(1, 0, 0)
		subscription.EndDate = &endDate

		charge, err := s.asaasSvc.CreateCharge(ctx, input.AsaasCustomerID, input.Amount, now.AddDate(0, 0, 7))
		if err != nil {
			return nil, err
		}
		payment := &models.Payment{
			ID:             uuid.New(),
			TenantID:       tenantID,
			SubscriptionID: &subscription.ID,
			AsaasPaymentID: charge.ID,
			Amount:         input.Amount,
			Status:         models.PaymentStatusPending,
			DueDate:        now.AddDate(0, 0, 7),
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return nil, fmt.Errorf("failed to persist charge: %w", err)
		}

	default:
		return nil, fmt.Errorf("unknown billing type %q", input.BillingType)
	}

	if err := s.subscriptionRepo.Create(ctx, subscription); err != nil {
		return nil, fmt.Errorf("failed to persist subscription: %w", err)
	}

	title := "Nova cobrança criada"
	message := fmt.Sprintf("%s: plano %s, R$ %.2f (%s)", tenant.Name, input.PlanName, input.Amount, input.BillingType)
	if err := s.notificationSvc.NotifyPlatformAdmins(ctx, models.NotificationTypeBillCreated, title, message, nil); err != nil {
		log.Printf("Failed to notify admins about new subscription %s: %v", subscription.ID.String(), err)
	}
	return subscription, nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, tenantID, subscriptionID uuid.UUID) error {
	subscription, err := s.subscriptionRepo.GetByID(ctx, tenantID, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}

	if subscription.BillingType == models.BillingTypeMonthly && subscription.AsaasSubscriptionID != nil {
		if err := s.asaasSvc.CancelSubscription(ctx, *subscription.AsaasSubscriptionID); err != nil {
			return fmt.Errorf("failed to cancel gateway subscription: %w", err)
		}
	}

	subscription.Status = models.SubscriptionStatusCanceled
	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Subscription, error) {
	return s.subscriptionRepo.List(ctx, tenantID, limit, offset)
}

// CheckExpirations expires lapsed subscriptions, freezes their tenants, and
// sends the 7/3/1 day renewal warnings. One subscription's failure does not
// stop the rest.
func (s *subscriptionService) CheckExpirations(ctx context.Context) error {
	now := time.Now()

	expired, err := s.subscriptionRepo.FindExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to find expired subscriptions: %w", err)
	}
	for _, subscription := range expired {
		if err := s.expireSubscription(ctx, subscription); err != nil {
			log.Printf("Failed to expire subscription %s: %v", subscription.ID.String(), err)
		}
	}

	for _, days := range expiryWarningDays {
		ending, err := s.subscriptionRepo.FindEndingOn(ctx, now.AddDate(0, 0, days))
		if err != nil {
			return fmt.Errorf("failed to find subscriptions ending in %d days: %w", days, err)
		}
		for _, subscription := range ending {
			s.warnExpiring(ctx, subscription, days)
		}
	}
	return nil
}

func (s *subscriptionService) expireSubscription(ctx context.Context, subscription *models.Subscription) error {
	subscription.Status = models.SubscriptionStatusExpired
	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		return fmt.Errorf("failed to mark subscription expired: %w", err)
	}

	if err := s.tenantRepo.UpdateStatus(ctx, subscription.TenantID, models.TenantStatusFrozen); err != nil {
		return fmt.Errorf("failed to freeze tenant: %w", err)
	}

	// Gateway cancellation is best-effort: the local row is already expired
	// and a stale recurring charge gets reconciled through the webhook.
	if subscription.BillingType == models.BillingTypeMonthly && subscription.AsaasSubscriptionID != nil {
		if err := s.asaasSvc.CancelSubscription(ctx, *subscription.AsaasSubscriptionID); err != nil {
			log.Printf("Failed to cancel gateway subscription %s: %v", *subscription.AsaasSubscriptionID, err)
		}
	}

	title := "Plano expirado"
	message := fmt.Sprintf("O plano %s expirou e o acesso foi congelado.", subscription.PlanName)
	if err := s.notificationSvc.NotifyTenantUsers(ctx, subscription.TenantID, models.NotificationTypePlanExpired, title, message, nil); err != nil {
		return fmt.Errorf("failed to notify tenant about expiry: %w", err)
	}
	return nil
}

func (s *subscriptionService) warnExpiring(ctx context.Context, subscription *models.Subscription, days int) {
	title := fmt.Sprintf("Plano expira em %d dia(s)", days)
	message := fmt.Sprintf("O plano %s expira em %d dia(s). Renove para manter o acesso.",
		subscription.PlanName, days)

	users, err := s.userRepo.ListByTenantAndRoles(ctx, subscription.TenantID,
		[]string{models.RoleClientAdmin, models.RoleManager})
	if err != nil {
		log.Printf("Failed to load warning recipients for tenant %s: %v", subscription.TenantID.String(), err)
		return
	}
	for _, user := range users {
		if err := s.notificationSvc.NotifyUserOncePerDay(ctx, user.ID, models.NotificationTypePlanExpiring, title, message); err != nil {
			log.Printf("Failed to warn user %s about expiry: %v", user.ID.String(), err)
		}
	}
}

// HandleAsaasWebhook reconciles gateway payment events. Events about charges
// this system never issued are acknowledged and ignored.
func (s *subscriptionService) HandleAsaasWebhook(ctx context.Context, event *AsaasWebhookEvent) error {
	payment, err := s.paymentRepo.GetByAsaasID(ctx, event.Payment.ID)
	if err != nil {
		return fmt.Errorf("failed to look up payment %s: %w", event.Payment.ID, err)
	}
	if payment == nil {
		log.Printf("Ignoring webhook %s for unknown payment %s", event.Event, event.Payment.ID)
		return nil
	}

	switch event.Event {
	case "PAYMENT_RECEIVED", "PAYMENT_CONFIRMED":
		return s.settlePayment(ctx, payment)
	case "PAYMENT_OVERDUE":
		payment.Status = models.PaymentStatusOverdue
		if err := s.paymentRepo.Update(ctx, payment); err != nil {
			return fmt.Errorf("failed to mark payment overdue: %w", err)
		}
		title := "Cobrança vencida"
		message := fmt.Sprintf("Pagamento %s de R$ %.2f venceu sem quitação.", payment.AsaasPaymentID, payment.Amount)
		if err := s.notificationSvc.NotifyPlatformAdmins(ctx, models.NotificationTypeBillDue, title, message, nil); err != nil {
			log.Printf("Failed to notify admins about overdue payment %s: %v", payment.ID.String(), err)
		}
		return nil
	default:
		log.Printf("Ignoring unhandled webhook event %s", event.Event)
		return nil
	}
}

func (s *subscriptionService) settlePayment(ctx context.Context, payment *models.Payment) error {
	if payment.Status == models.PaymentStatusPaid {
		return nil
	}

	now := time.Now()
	payment.Status = models.PaymentStatusPaid
	payment.PaidAt = &now
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return fmt.Errorf("failed to mark payment paid: %w", err)
	}

	if payment.SubscriptionID != nil {
		subscription, err := s.subscriptionRepo.GetByID(ctx, payment.TenantID, *payment.SubscriptionID)
		if err != nil {
			return fmt.Errorf("failed to load subscription for payment: %w", err)
		}
		s.extendSubscription(subscription, now)
		if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
			return fmt.Errorf("failed to extend subscription: %w", err)
		}
		if subscription.Status == models.SubscriptionStatusActive {
			if err := s.tenantRepo.UpdateStatus(ctx, subscription.TenantID, models.TenantStatusActive); err != nil {
				return fmt.Errorf("failed to unfreeze tenant: %w", err)
			}
		}
	}

	title := "Pagamento recebido"
	message := fmt.Sprintf("Pagamento %s de R$ %.2f confirmado.", payment.AsaasPaymentID, payment.Amount)
	if err := s.notificationSvc.NotifyPlatformAdmins(ctx, models.NotificationTypeBillPaid, title, message, nil); err != nil {
		log.Printf("Failed to notify admins about paid payment %s: %v", payment.ID.String(), err)
	}
	return nil
}

// extendSubscription pushes the end date forward by one billing cycle,
// anchored on the later of the current end date and the payment time.
func (s *subscriptionService) extendSubscription(subscription *models.Subscription, paidAt time.Time) {
	anchor := paidAt
	if subscription.EndDate != nil && subscription.EndDate.After(paidAt) {
		anchor = *subscription.EndDate
	}

	var endDate time.Time
	if subscription.BillingType == models.BillingTypeUpfront {
		endDate = anchor.AddDate(1, 0, 0)
	} else {
		endDate = anchor.AddDate(0, 1, 0)
	}
	subscription.EndDate = &endDate
	subscription.Status = models.SubscriptionStatusActive
}
