package services

import (
	"context"
	"time"

	"conexx/internal/models"
	"conexx/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock repositories and services shared by the package tests.

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) UpdateCachedRevenue(ctx context.Context, id uuid.UUID, revenue float64, syncedAt time.Time) error {
	args := m.Called(ctx, id, revenue, syncedAt)
	return args.Error(0)
}

func (m *MockTenantRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Upsert(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*models.Order, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) SumApprovedValue(ctx context.Context, tenantID uuid.UUID) (float64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockOrderRepository) SumApprovedValueBetween(ctx context.Context, tenantID *uuid.UUID, start, end time.Time) (float64, error) {
	args := m.Called(ctx, tenantID, start, end)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockOrderRepository) CountByStatusBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (map[string]int, error) {
	args := m.Called(ctx, tenantID, start, end)
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockOrderRepository) TotalsByPaymentMethodBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (map[string]float64, error) {
	args := m.Called(ctx, tenantID, start, end)
	return args.Get(0).(map[string]float64), args.Error(1)
}

func (m *MockOrderRepository) ApprovedRevenueByTenant(ctx context.Context) ([]*repositories.TenantRevenue, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*repositories.TenantRevenue), args.Error(1)
}

type MockAbandonedCheckoutRepository struct {
	mock.Mock
}

func (m *MockAbandonedCheckoutRepository) Upsert(ctx context.Context, checkout *models.AbandonedCheckout) error {
	args := m.Called(ctx, checkout)
	return args.Error(0)
}

func (m *MockAbandonedCheckoutRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.AbandonedCheckout, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.AbandonedCheckout), args.Error(1)
}

func (m *MockAbandonedCheckoutRepository) MarkRecoveredByEmail(ctx context.Context, tenantID uuid.UUID, email string) error {
	args := m.Called(ctx, tenantID, email)
	return args.Error(0)
}

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) Upsert(ctx context.Context, coupon *models.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCouponRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Coupon, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Coupon), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListByTenantAndRoles(ctx context.Context, tenantID uuid.UUID, roles []string) ([]*models.User, error) {
	args := m.Called(ctx, tenantID, roles)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) ListPlatformAdmins(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) ExistsWithTitleSince(ctx context.Context, userID uuid.UUID, title string, since time.Time) (bool, error) {
	args := m.Called(ctx, userID, title, since)
	return args.Bool(0), args.Error(1)
}

type MockPushRepository struct {
	mock.Mock
}

func (m *MockPushRepository) GetSettings(ctx context.Context, tenantID uuid.UUID) (*models.PushSettings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PushSettings), args.Error(1)
}

func (m *MockPushRepository) UpsertSettings(ctx context.Context, settings *models.PushSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockPushRepository) CreateSubscription(ctx context.Context, sub *models.PushSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockPushRepository) ListSubscriptionsByUser(ctx context.Context, userID uuid.UUID) ([]*models.PushSubscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.PushSubscription), args.Error(1)
}

func (m *MockPushRepository) ListSubscriptionsByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.PushSubscription, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.PushSubscription), args.Error(1)
}

func (m *MockPushRepository) DeleteSubscription(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPushRepository) DeleteSubscriptionByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	args := m.Called(ctx, userID, endpoint)
	return args.Error(0)
}

func (m *MockPushRepository) AppendLog(ctx context.Context, entry *models.PushLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockPushRepository) ListLogs(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.PushLog, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.PushLog), args.Error(1)
}

func (m *MockPushRepository) LogExistsSince(ctx context.Context, tenantID uuid.UUID, kind string, since time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, kind, since)
	return args.Bool(0), args.Error(1)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, subscription *models.Subscription) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Subscription, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindExpired(ctx context.Context, now time.Time) ([]*models.Subscription, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindEndingOn(ctx context.Context, day time.Time) ([]*models.Subscription, error) {
	args := m.Called(ctx, day)
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByAsaasID(ctx context.Context, asaasPaymentID string) (*models.Payment, error) {
	args := m.Called(ctx, asaasPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Payment, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Payment), args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, key string) (*models.PlatformSetting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformSetting), args.Error(1)
}

func (m *MockSettingsRepository) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetDashboardSummary(ctx context.Context, tenantID uuid.UUID, dest interface{}) (bool, error) {
	args := m.Called(ctx, tenantID, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetDashboardSummary(ctx context.Context, tenantID uuid.UUID, summary interface{}, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, summary, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateDashboardSummary(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) AcquireSyncLease(ctx context.Context, tenantID uuid.UUID, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, tenantID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) ReleaseSyncLease(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockYampiService struct {
	mock.Mock
}

func (m *MockYampiService) FetchOrders(ctx context.Context, creds YampiCredentials, page int) (*OrdersPage, error) {
	args := m.Called(ctx, creds, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OrdersPage), args.Error(1)
}

func (m *MockYampiService) FetchAbandonedCarts(ctx context.Context, creds YampiCredentials, page int) (*CartsPage, error) {
	args := m.Called(ctx, creds, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartsPage), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) NotifySale(ctx context.Context, tenantID uuid.UUID, order *models.Order) error {
	args := m.Called(ctx, tenantID, order)
	return args.Error(0)
}

func (m *MockNotificationService) NotifyTenantUsers(ctx context.Context, tenantID uuid.UUID, event models.NotificationType, title, message string, actionLink *string) error {
	args := m.Called(ctx, tenantID, event, title, message, actionLink)
	return args.Error(0)
}

func (m *MockNotificationService) NotifyPlatformAdmins(ctx context.Context, event models.NotificationType, title, message string, actionLink *string) error {
	args := m.Called(ctx, event, title, message, actionLink)
	return args.Error(0)
}

func (m *MockNotificationService) NotifyUserOncePerDay(ctx context.Context, userID uuid.UUID, event models.NotificationType, title, message string) error {
	args := m.Called(ctx, userID, event, title, message)
	return args.Error(0)
}

func (m *MockNotificationService) PushToTenant(ctx context.Context, tenantID uuid.UUID, payload interface{}) {
	m.Called(ctx, tenantID, payload)
}

func (m *MockNotificationService) PushToUser(ctx context.Context, userID uuid.UUID, payload interface{}) {
	m.Called(ctx, userID, payload)
}

type MockAsaasService struct {
	mock.Mock
}

func (m *MockAsaasService) CreateSubscription(ctx context.Context, customerID string, value float64, nextDueDate time.Time) (*AsaasSubscription, error) {
	args := m.Called(ctx, customerID, value, nextDueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AsaasSubscription), args.Error(1)
}

func (m *MockAsaasService) CancelSubscription(ctx context.Context, subscriptionID string) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

func (m *MockAsaasService) CreateCharge(ctx context.Context, customerID string, value float64, dueDate time.Time) (*AsaasPayment, error) {
	args := m.Called(ctx, customerID, value, dueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AsaasPayment), args.Error(1)
}

type MockReportArchiveService struct {
	mock.Mock
}

func (m *MockReportArchiveService) ArchiveReport(ctx context.Context, tenantID uuid.UUID, kind string, payload []byte) (string, error) {
	args := m.Called(ctx, tenantID, kind, payload)
	return args.String(0), args.Error(1)
}

func (m *MockReportArchiveService) GetPresignedURL(objectName string, expiry time.Duration) (string, error) {
	args := m.Called(objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockReportArchiveService) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
