package services

import (
	"strconv"
	"strings"
	"time"

	"conexx/internal/models"

	"github.com/google/uuid"
)

// CanonicalPaymentMethod maps a raw gateway method string into exactly one of
// PIX, Cartão or Boleto by case-insensitive substring match. Unrecognized
// methods default to Cartão; this is the single canonicalization used
// everywhere, including the dashboard aggregation (two call sites in the old
// system disagreed on the default).
func CanonicalPaymentMethod(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "pix"):
		return models.PaymentMethodPix
	case strings.Contains(lower, "billet"), strings.Contains(lower, "boleto"):
		return models.PaymentMethodBoleto
	case strings.Contains(lower, "card"), strings.Contains(lower, "credit"),
		strings.Contains(lower, "cartão"), strings.Contains(lower, "cartao"):
		return models.PaymentMethodCard
	default:
		return models.PaymentMethodCard
	}
}

// Source status aliases that settle into each canonical status. Anything not
// listed stays AGUARDANDO.
var approvedAliases = map[string]bool{
	"paid":       true,
	"approved":   true,
	"authorized": true,
	"delivered":  true,
}

var canceledAliases = map[string]bool{
	"cancelled":  true,
	"canceled":   true,
	"refunded":   true,
	"refused":    true,
	"chargeback": true,
}

// CanonicalStatus maps a source status alias into APROVADO, CANCELADO or
// AGUARDANDO.
func CanonicalStatus(alias string) string {
	lower := strings.ToLower(strings.TrimSpace(alias))
	switch {
	case approvedAliases[lower]:
		return models.OrderStatusApproved
	case canceledAliases[lower]:
		return models.OrderStatusCanceled
	default:
		return models.OrderStatusPending
	}
}

// MapOrder normalizes a raw storefront order into the internal row shape.
func MapOrder(tenantID uuid.UUID, raw *YampiOrder) *models.Order {
	value := raw.ValueTotal
	if value == 0 {
		value = raw.Total
	}

	method := ""
	if len(raw.Payments) > 0 {
		method = raw.Payments[0].Alias
		if method == "" {
			method = raw.Payments[0].Name
		}
	}

	label := ""
	if len(raw.Items.Data) > 0 {
		label = raw.Items.Data[0].SKUTitle
	}

	order := &models.Order{
		ID:            uuid.New(),
		TenantID:      tenantID,
		ExternalID:    externalOrderID(raw),
		CustomerName:  raw.Customer.Data.Name,
		ProductLabel:  label,
		Value:         value,
		PaymentMethod: CanonicalPaymentMethod(method),
		Status:        CanonicalStatus(raw.Status.Data.Alias),
		RawStatus:     raw.Status.Data.Alias,
		OrderDate:     parseYampiTime(raw.CreatedAt),
	}
	if raw.Customer.Data.Email != "" {
		email := raw.Customer.Data.Email
		order.CustomerEmail = &email
	}
	if raw.Coupon != nil && raw.Coupon.Code != "" {
		code := raw.Coupon.Code
		order.CouponCode = &code
	}
	return order
}

// MapCart normalizes a raw abandoned cart.
func MapCart(tenantID uuid.UUID, raw *YampiCart) *models.AbandonedCheckout {
	value := raw.TotalValue
	if value == 0 {
		value = raw.Total
	}

	label := ""
	if len(raw.Items.Data) > 0 {
		label = raw.Items.Data[0].SKUTitle
	}

	checkout := &models.AbandonedCheckout{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ExternalID:   externalCartID(raw),
		CustomerName: raw.Customer.Data.Name,
		ProductLabel: label,
		Value:        value,
		AbandonedAt:  parseYampiTime(raw.CreatedAt),
	}
	if raw.Customer.Data.Email != "" {
		email := raw.Customer.Data.Email
		checkout.CustomerEmail = &email
	}
	return checkout
}

func externalOrderID(raw *YampiOrder) string {
	if raw.Number != 0 {
		return strconv.FormatInt(raw.Number, 10)
	}
	return strconv.FormatInt(raw.ID, 10)
}

func externalCartID(raw *YampiCart) string {
	if raw.Token != "" {
		return raw.Token
	}
	return strconv.FormatInt(raw.ID, 10)
}

func parseYampiTime(value string) time.Time {
	if t, err := time.Parse(yampiTimestampLayout, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Now()
}
