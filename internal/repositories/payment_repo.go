package repositories

import (
	"context"
	"errors"

	"conexx/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByAsaasID(ctx context.Context, asaasPaymentID string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Payment, error)
}

type paymentRepo struct {
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `id, tenant_id, subscription_id, asaas_payment_id, amount, status,
		due_date, paid_at, created_at, updated_at`

func scanPayment(row interface{ Scan(...interface{}) error }) (*models.Payment, error) {
	payment := &models.Payment{}
	err := row.Scan(&payment.ID, &payment.TenantID, &payment.SubscriptionID,
		&payment.AsaasPaymentID, &payment.Amount, &payment.Status, &payment.DueDate,
		&payment.PaidAt, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, tenant_id, subscription_id, asaas_payment_id, amount, status,
			due_date, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, payment.ID, payment.TenantID, payment.SubscriptionID,
		payment.AsaasPaymentID, payment.Amount, payment.Status, payment.DueDate, payment.PaidAt)
	return err
}

// GetByAsaasID returns (nil, nil) when no payment carries the gateway id yet,
// which happens for webhook events about charges created outside this system.
func (r *paymentRepo) GetByAsaasID(ctx context.Context, asaasPaymentID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE asaas_payment_id = $1`
	payment, err := scanPayment(r.db.QueryRow(ctx, query, asaasPaymentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	query := `
		UPDATE payments
		SET amount = $1, status = $2, due_date = $3, paid_at = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, payment.Amount, payment.Status, payment.DueDate,
		payment.PaidAt, payment.ID)
	return err
}

func (r *paymentRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE tenant_id = $1
		ORDER BY due_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
