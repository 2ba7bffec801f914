package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"conexx/internal/models"
	"conexx/internal/repositories"

	"github.com/google/uuid"
)

// NotificationService turns domain events into persisted notifications and
// best-effort push deliveries.
type NotificationService interface {
	NotifySale(ctx context.Context, tenantID uuid.UUID, order *models.Order) error
	NotifyTenantUsers(ctx context.Context, tenantID uuid.UUID, event models.NotificationType, title, message string, actionLink *string) error
	NotifyPlatformAdmins(ctx context.Context, event models.NotificationType, title, message string, actionLink *string) error
	NotifyUserOncePerDay(ctx context.Context, userID uuid.UUID, event models.NotificationType, title, message string) error
	PushToTenant(ctx context.Context, tenantID uuid.UUID, payload interface{})
	PushToUser(ctx context.Context, userID uuid.UUID, payload interface{})
}

type notificationService struct {
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	pushRepo         repositories.PushRepository
	httpClient       *http.Client
}

func NewNotificationService(
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	pushRepo repositories.PushRepository,
) NotificationService {
	return &notificationService{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		pushRepo:         pushRepo,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifySale fans a new approved order out to the tenant's client_admin and
// manager users, with a push on top of the in-app record.
func (s *notificationService) NotifySale(ctx context.Context, tenantID uuid.UUID, order *models.Order) error {
	title := "Nova venda aprovada"
	message := fmt.Sprintf("%s — R$ %.2f (%s)", order.ProductLabel, order.Value, order.PaymentMethod)

	users, err := s.userRepo.ListByTenantAndRoles(ctx, tenantID,
		[]string{models.RoleClientAdmin, models.RoleManager})
	if err != nil {
		return fmt.Errorf("failed to load sale recipients: %w", err)
	}

	for _, user := range users {
		notification := &models.Notification{
			ID:      uuid.New(),
			UserID:  user.ID,
			Type:    models.NotificationTypeSale,
			Title:   title,
			Message: message,
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			return fmt.Errorf("failed to persist sale notification: %w", err)
		}
		s.PushToUser(ctx, user.ID, map[string]string{"title": title, "body": message})
	}
	return nil
}

func (s *notificationService) NotifyTenantUsers(ctx context.Context, tenantID uuid.UUID, event models.NotificationType, title, message string, actionLink *string) error {
	users, err := s.userRepo.ListByTenantAndRoles(ctx, tenantID,
		[]string{models.RoleClientAdmin, models.RoleManager})
	if err != nil {
		return fmt.Errorf("failed to load tenant recipients: %w", err)
	}
	for _, user := range users {
		notification := &models.Notification{
			ID:         uuid.New(),
			UserID:     user.ID,
			Type:       event,
			Title:      title,
			Message:    message,
			ActionLink: actionLink,
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			return fmt.Errorf("failed to persist notification: %w", err)
		}
	}
	return nil
}

// NotifyPlatformAdmins routes billing and onboarding events to every
// platform_admin user, regardless of tenant.
func (s *notificationService) NotifyPlatformAdmins(ctx context.Context, event models.NotificationType, title, message string, actionLink *string) error {
	admins, err := s.userRepo.ListPlatformAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to load platform admins: %w", err)
	}
	for _, admin := range admins {
		notification := &models.Notification{
			ID:         uuid.New(),
			UserID:     admin.ID,
			Type:       event,
			Title:      title,
			Message:    message,
			ActionLink: actionLink,
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			return fmt.Errorf("failed to persist admin notification: %w", err)
		}
	}
	return nil
}

// NotifyUserOncePerDay skips the send when an identical-titled notification
// already exists for the user since local midnight (server timezone). The
// window is approximate: a tenant in another timezone can still see a double
// send across its own midnight.
func (s *notificationService) NotifyUserOncePerDay(ctx context.Context, userID uuid.UUID, event models.NotificationType, title, message string) error {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	exists, err := s.notificationRepo.ExistsWithTitleSince(ctx, userID, title, midnight)
	if err != nil {
		return fmt.Errorf("failed to check notification dedup: %w", err)
	}
	if exists {
		return nil
	}

	notification := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    event,
		Title:   title,
		Message: message,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}
	s.PushToUser(ctx, userID, map[string]string{"title": title, "body": message})
	return nil
}

// PushToTenant delivers a payload to every push endpoint registered by the
// tenant's users. Delivery is best-effort and never fails the caller.
func (s *notificationService) PushToTenant(ctx context.Context, tenantID uuid.UUID, payload interface{}) {
	subs, err := s.pushRepo.ListSubscriptionsByTenant(ctx, tenantID)
	if err != nil {
		log.Printf("Failed to list push subscriptions for tenant %s: %v", tenantID.String(), err)
		return
	}
	s.deliverPush(ctx, subs, payload)
}

func (s *notificationService) PushToUser(ctx context.Context, userID uuid.UUID, payload interface{}) {
	subs, err := s.pushRepo.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		log.Printf("Failed to list push subscriptions for user %s: %v", userID.String(), err)
		return
	}
	s.deliverPush(ctx, subs, payload)
}

func (s *notificationService) deliverPush(ctx context.Context, subs []*models.PushSubscription, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal push payload: %v", err)
		return
	}

	for _, sub := range subs {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(body))
		if err != nil {
			log.Printf("Failed to build push request for %s: %v", sub.Endpoint, err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("TTL", "86400")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			log.Printf("Push delivery failed for %s: %v", sub.Endpoint, err)
			continue
		}
		resp.Body.Close()

		// 404/410 means the browser dropped the subscription; clean it up.
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			if err := s.pushRepo.DeleteSubscription(ctx, sub.ID); err != nil {
				log.Printf("Failed to delete expired push subscription %s: %v", sub.ID.String(), err)
			}
			continue
		}
		if resp.StatusCode >= 400 {
			log.Printf("Push endpoint %s returned status %d", sub.Endpoint, resp.StatusCode)
		}
	}
}
