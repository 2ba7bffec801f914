package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"conexx/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceTestSuite struct {
	suite.Suite
	subscriptionRepo *MockSubscriptionRepository
	paymentRepo      *MockPaymentRepository
	tenantRepo       *MockTenantRepository
	userRepo         *MockUserRepository
	asaasSvc         *MockAsaasService
	notificationSvc  *MockNotificationService
	service          SubscriptionService

	tenantID uuid.UUID
	tenant   *models.Tenant
}

func (suite *SubscriptionServiceTestSuite) SetupTest() {
	suite.subscriptionRepo = new(MockSubscriptionRepository)
	suite.paymentRepo = new(MockPaymentRepository)
	suite.tenantRepo = new(MockTenantRepository)
	suite.userRepo = new(MockUserRepository)
	suite.asaasSvc = new(MockAsaasService)
	suite.notificationSvc = new(MockNotificationService)

	suite.service = NewSubscriptionService(suite.subscriptionRepo, suite.paymentRepo,
		suite.tenantRepo, suite.userRepo, suite.asaasSvc, suite.notificationSvc)

	suite.tenantID = uuid.New()
	suite.tenant = &models.Tenant{ID: suite.tenantID, Name: "Loja Teste", Status: models.TenantStatusActive}
}

func (suite *SubscriptionServiceTestSuite) TearDownTest() {
	suite.subscriptionRepo.AssertExpectations(suite.T())
	suite.paymentRepo.AssertExpectations(suite.T())
	suite.tenantRepo.AssertExpectations(suite.T())
	suite.userRepo.AssertExpectations(suite.T())
	suite.asaasSvc.AssertExpectations(suite.T())
	suite.notificationSvc.AssertExpectations(suite.T())
}

func (suite *SubscriptionServiceTestSuite) TestCreateMonthlySubscription() {
	suite.tenantRepo.On("GetByID", mock.Anything, suite.tenantID).Return(suite.tenant, nil).Once()
	suite.asaasSvc.On("CreateSubscription", mock.Anything, "cus_123", 99.90, mock.AnythingOfType("time.Time")).
		Return(&AsaasSubscription{ID: "sub_abc"}, nil).Once()
	suite.subscriptionRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Subscription")).Return(nil).Once()
	suite.notificationSvc.On("NotifyPlatformAdmins", mock.Anything, models.NotificationTypeBillCreated,
		mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	subscription, err := suite.service.CreateSubscription(context.Background(), suite.tenantID, CreateSubscriptionInput{
		PlanName:        "Pro",
		Amount:          99.90,
		BillingType:     models.BillingTypeMonthly,
		AsaasCustomerID: "cus_123",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.SubscriptionStatusActive, subscription.Status)
	if assert.NotNil(suite.T(), subscription.AsaasSubscriptionID) {
		assert.Equal(suite.T(), "sub_abc", *subscription.AsaasSubscriptionID)
	}
	if assert.NotNil(suite.T(), subscription.EndDate) {
		expected := time.Now().AddDate(0, 1, 0)
		assert.WithinDuration(suite.T(), expected, *subscription.EndDate, time.Minute)
	}
}

func (suite *SubscriptionServiceTestSuite) TestCreateUpfrontSubscription() {
	suite.tenantRepo.On("GetByID", mock.Anything, suite.tenantID).Return(suite.tenant, nil).Once()
	suite.asaasSvc.On("CreateCharge", mock.Anything, "cus_123", 999.00, mock.AnythingOfType("time.Time")).
		Return(&AsaasPayment{ID: "pay_xyz"}, nil).Once()
	suite.paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
		return p.AsaasPaymentID == "pay_xyz" && p.Status == models.PaymentStatusPending && p.TenantID == suite.tenantID
	})).Return(nil).Once()
	suite.subscriptionRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Subscription")).Return(nil).Once()
	suite.notificationSvc.On("NotifyPlatformAdmins", mock.Anything, models.NotificationTypeBillCreated,
		mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	subscription, err := suite.service.CreateSubscription(context.Background(), suite.tenantID, CreateSubscriptionInput{
		PlanName:        "Anual",
		Amount:          999.00,
		BillingType:     models.BillingTypeUpfront,
		AsaasCustomerID: "cus_123",
	})

	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), subscription.AsaasSubscriptionID)
	if assert.NotNil(suite.T(), subscription.EndDate) {
		expected := time.Now().AddDate(1, 0, 0)
		assert.WithinDuration(suite.T(), expected, *subscription.EndDate, time.Minute)
	}
}

func (suite *SubscriptionServiceTestSuite) TestCreateSubscriptionUnknownBillingType() {
	suite.tenantRepo.On("GetByID", mock.Anything, suite.tenantID).Return(suite.tenant, nil).Once()

	subscription, err := suite.service.CreateSubscription(context.Background(), suite.tenantID, CreateSubscriptionInput{
		PlanName:    "Pro",
		Amount:      10,
		BillingType: "weekly",
	})

	assert.Nil(suite.T(), subscription)
	assert.Error(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestCreateSubscriptionGatewayFailure() {
	suite.tenantRepo.On("GetByID", mock.Anything, suite.tenantID).Return(suite.tenant, nil).Once()
	suite.asaasSvc.On("CreateSubscription", mock.Anything, "cus_123", 99.90, mock.AnythingOfType("time.Time")).
		Return(nil, errors.New("gateway unavailable")).Once()

	subscription, err := suite.service.CreateSubscription(context.Background(), suite.tenantID, CreateSubscriptionInput{
		PlanName:        "Pro",
		Amount:          99.90,
		BillingType:     models.BillingTypeMonthly,
		AsaasCustomerID: "cus_123",
	})

	assert.Nil(suite.T(), subscription)
	assert.Error(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestCancelMonthlySubscription() {
	subscriptionID := uuid.New()
	gatewayID := "sub_abc"
	subscription := &models.Subscription{
		ID:                  subscriptionID,
		TenantID:            suite.tenantID,
		BillingType:         models.BillingTypeMonthly,
		AsaasSubscriptionID: &gatewayID,
		Status:              models.SubscriptionStatusActive,
	}

	suite.subscriptionRepo.On("GetByID", mock.Anything, suite.tenantID, subscriptionID).Return(subscription, nil).Once()
	suite.asaasSvc.On("CancelSubscription", mock.Anything, "sub_abc").Return(nil).Once()
	suite.subscriptionRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *models.Subscription) bool {
		return s.Status == models.SubscriptionStatusCanceled
	})).Return(nil).Once()

	err := suite.service.CancelSubscription(context.Background(), suite.tenantID, subscriptionID)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestCheckExpirationsFreezesTenant() {
	endDate := time.Now().AddDate(0, 0, -1)
	gatewayID := "sub_abc"
	expired := &models.Subscription{
		ID:                  uuid.New(),
		TenantID:            suite.tenantID,
		PlanName:            "Pro",
		BillingType:         models.BillingTypeMonthly,
		AsaasSubscriptionID: &gatewayID,
		Status:              models.SubscriptionStatusActive,
		EndDate:             &endDate,
	}

	suite.subscriptionRepo.On("FindExpired", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]*models.Subscription{expired}, nil).Once()
	suite.subscriptionRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *models.Subscription) bool {
		return s.Status == models.SubscriptionStatusExpired
	})).Return(nil).Once()
	suite.tenantRepo.On("UpdateStatus", mock.Anything, suite.tenantID, models.TenantStatusFrozen).Return(nil).Once()
	suite.asaasSvc.On("CancelSubscription", mock.Anything, "sub_abc").Return(nil).Once()
	suite.notificationSvc.On("NotifyTenantUsers", mock.Anything, suite.tenantID, models.NotificationTypePlanExpired,
		mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	// No upcoming expirations in this scenario.
	suite.subscriptionRepo.On("FindEndingOn", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]*models.Subscription{}, nil).Times(3)

	err := suite.service.CheckExpirations(context.Background())
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestCheckExpirationsWarnsEndingSubscriptions() {
	suite.subscriptionRepo.On("FindExpired", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]*models.Subscription{}, nil).Once()

	ending := &models.Subscription{ID: uuid.New(), TenantID: suite.tenantID, PlanName: "Pro"}
	sevenDays := time.Now().AddDate(0, 0, 7)

	suite.subscriptionRepo.On("FindEndingOn", mock.Anything, mock.MatchedBy(func(day time.Time) bool {
		return day.Format("2006-01-02") == sevenDays.Format("2006-01-02")
	})).Return([]*models.Subscription{ending}, nil).Once()
	suite.subscriptionRepo.On("FindEndingOn", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]*models.Subscription{}, nil).Twice()

	admin := &models.User{ID: uuid.New(), Role: models.RoleClientAdmin}
	manager := &models.User{ID: uuid.New(), Role: models.RoleManager}
	suite.userRepo.On("ListByTenantAndRoles", mock.Anything, suite.tenantID,
		[]string{models.RoleClientAdmin, models.RoleManager}).Return([]*models.User{admin, manager}, nil).Once()

	suite.notificationSvc.On("NotifyUserOncePerDay", mock.Anything, admin.ID, models.NotificationTypePlanExpiring,
		"Plano expira em 7 dia(s)", mock.Anything).Return(nil).Once()
	suite.notificationSvc.On("NotifyUserOncePerDay", mock.Anything, manager.ID, models.NotificationTypePlanExpiring,
		"Plano expira em 7 dia(s)", mock.Anything).Return(nil).Once()

	err := suite.service.CheckExpirations(context.Background())
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestWebhookUnknownPaymentIgnored() {
	event := &AsaasWebhookEvent{Event: "PAYMENT_RECEIVED"}
	event.Payment.ID = "pay_unknown"

	suite.paymentRepo.On("GetByAsaasID", mock.Anything, "pay_unknown").Return(nil, nil).Once()

	err := suite.service.HandleAsaasWebhook(context.Background(), event)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestWebhookSettlesPaymentAndExtends() {
	subscriptionID := uuid.New()
	endDate := time.Now().AddDate(0, 0, -2)
	subscription := &models.Subscription{
		ID:          subscriptionID,
		TenantID:    suite.tenantID,
		BillingType: models.BillingTypeMonthly,
		Status:      models.SubscriptionStatusExpired,
		EndDate:     &endDate,
	}
	payment := &models.Payment{
		ID:             uuid.New(),
		TenantID:       suite.tenantID,
		SubscriptionID: &subscriptionID,
		AsaasPaymentID: "pay_1",
		Amount:         99.90,
		Status:         models.PaymentStatusPending,
	}

	suite.paymentRepo.On("GetByAsaasID", mock.Anything, "pay_1").Return(payment, nil).Once()
	suite.paymentRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
		return p.Status == models.PaymentStatusPaid && p.PaidAt != nil
	})).Return(nil).Once()
	suite.subscriptionRepo.On("GetByID", mock.Anything, suite.tenantID, subscriptionID).Return(subscription, nil).Once()

	// End date was in the past, so the new cycle anchors on the payment time.
	suite.subscriptionRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *models.Subscription) bool {
		if s.Status != models.SubscriptionStatusActive || s.EndDate == nil {
			return false
		}
		expected := time.Now().AddDate(0, 1, 0)
		return s.EndDate.Sub(expected) < time.Minute && expected.Sub(*s.EndDate) < time.Minute
	})).Return(nil).Once()
	suite.tenantRepo.On("UpdateStatus", mock.Anything, suite.tenantID, models.TenantStatusActive).Return(nil).Once()
	suite.notificationSvc.On("NotifyPlatformAdmins", mock.Anything, models.NotificationTypeBillPaid,
		mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	event := &AsaasWebhookEvent{Event: "PAYMENT_CONFIRMED"}
	event.Payment.ID = "pay_1"

	err := suite.service.HandleAsaasWebhook(context.Background(), event)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestWebhookSettleIsIdempotent() {
	paidAt := time.Now().Add(-time.Hour)
	payment := &models.Payment{
		ID:             uuid.New(),
		TenantID:       suite.tenantID,
		AsaasPaymentID: "pay_1",
		Status:         models.PaymentStatusPaid,
		PaidAt:         &paidAt,
	}

	suite.paymentRepo.On("GetByAsaasID", mock.Anything, "pay_1").Return(payment, nil).Once()

	event := &AsaasWebhookEvent{Event: "PAYMENT_RECEIVED"}
	event.Payment.ID = "pay_1"

	// Already-paid payments are not re-settled.
	err := suite.service.HandleAsaasWebhook(context.Background(), event)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestWebhookFutureEndDateExtendsFromEnd() {
	subscriptionID := uuid.New()
	endDate := time.Now().AddDate(0, 0, 10)
	subscription := &models.Subscription{
		ID:          subscriptionID,
		TenantID:    suite.tenantID,
		BillingType: models.BillingTypeUpfront,
		Status:      models.SubscriptionStatusActive,
		EndDate:     &endDate,
	}
	payment := &models.Payment{
		ID:             uuid.New(),
		TenantID:       suite.tenantID,
		SubscriptionID: &subscriptionID,
		AsaasPaymentID: "pay_2",
		Amount:         999.00,
		Status:         models.PaymentStatusPending,
	}

	suite.paymentRepo.On("GetByAsaasID", mock.Anything, "pay_2").Return(payment, nil).Once()
	suite.paymentRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Payment")).Return(nil).Once()
	suite.subscriptionRepo.On("GetByID", mock.Anything, suite.tenantID, subscriptionID).Return(subscription, nil).Once()

	// Early renewal: the new year stacks on top of the remaining days.
	expected := endDate.AddDate(1, 0, 0)
	suite.subscriptionRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *models.Subscription) bool {
		return s.EndDate != nil && s.EndDate.Equal(expected)
	})).Return(nil).Once()
	suite.tenantRepo.On("UpdateStatus", mock.Anything, suite.tenantID, models.TenantStatusActive).Return(nil).Once()
	suite.notificationSvc.On("NotifyPlatformAdmins", mock.Anything, models.NotificationTypeBillPaid,
		mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	event := &AsaasWebhookEvent{Event: "PAYMENT_RECEIVED"}
	event.Payment.ID = "pay_2"

	err := suite.service.HandleAsaasWebhook(context.Background(), event)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestWebhookOverdueNotifiesAdmins() {
	payment := &models.Payment{
		ID:             uuid.New(),
		TenantID:       suite.tenantID,
		AsaasPaymentID: "pay_3",
		Amount:         99.90,
		Status:         models.PaymentStatusPending,
	}

	suite.paymentRepo.On("GetByAsaasID", mock.Anything, "pay_3").Return(payment, nil).Once()
	suite.paymentRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
		return p.Status == models.PaymentStatusOverdue
	})).Return(nil).Once()
	suite.notificationSvc.On("NotifyPlatformAdmins", mock.Anything, models.NotificationTypeBillDue,
		mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	event := &AsaasWebhookEvent{Event: "PAYMENT_OVERDUE"}
	event.Payment.ID = "pay_3"

	err := suite.service.HandleAsaasWebhook(context.Background(), event)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestWebhookUnhandledEventIgnored() {
	payment := &models.Payment{ID: uuid.New(), AsaasPaymentID: "pay_4", Status: models.PaymentStatusPending}
	suite.paymentRepo.On("GetByAsaasID", mock.Anything, "pay_4").Return(payment, nil).Once()

	event := &AsaasWebhookEvent{Event: "PAYMENT_CREATED"}
	event.Payment.ID = "pay_4"

	err := suite.service.HandleAsaasWebhook(context.Background(), event)
	assert.NoError(suite.T(), err)
}

func TestSubscriptionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceTestSuite))
}
