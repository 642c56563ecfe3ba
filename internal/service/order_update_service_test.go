package service

import (
	"testing"

	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestApplyOrderPatch_AllFields(t *testing.T) {
	order := &domain.Order{
		Status:        domain.OrderStatusPending,
		PaymentMethod: domain.PaymentCash,
	}

	patch := domain.OrderPatch{
		Status:           strPtr("PROCESSING"),
		PaymentMethod:    strPtr("PIX"),
		PaymentReference: strPtr("ref-1"),
		ShippingAddress:  strPtr("Rua Nova, 10"),
		ShippingCost:     decPtr("12.50"),
		TaxAmount:        decPtr("3.00"),
		DiscountAmount:   decPtr("1.00"),
		TrackingNumber:   strPtr("TRK-77"),
	}

	require.NoError(t, applyOrderPatch(order, patch))

	assert.Equal(t, domain.OrderStatusProcessing, order.Status)
	assert.Equal(t, domain.PaymentPix, order.PaymentMethod)
	assert.Equal(t, "ref-1", order.PaymentReference)
	assert.Equal(t, "Rua Nova, 10", order.ShippingAddress)
	assert.True(t, order.ShippingCost.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, order.TaxAmount.Equal(decimal.RequireFromString("3.00")))
	assert.True(t, order.DiscountAmount.Equal(decimal.RequireFromString("1.00")))
	assert.Equal(t, "TRK-77", order.TrackingNumber)
}

func TestApplyOrderPatch_AbsentFieldsUntouched(t *testing.T) {
	order := &domain.Order{
		Status:          domain.OrderStatusShipped,
		PaymentMethod:   domain.PaymentCreditCard,
		ShippingAddress: "Rua Antiga, 1",
		ShippingCost:    decimal.RequireFromString("8.00"),
	}

	require.NoError(t, applyOrderPatch(order, domain.OrderPatch{
		TrackingNumber: strPtr("TRK-1"),
	}))

	assert.Equal(t, domain.OrderStatusShipped, order.Status)
	assert.Equal(t, domain.PaymentCreditCard, order.PaymentMethod)
	assert.Equal(t, "Rua Antiga, 1", order.ShippingAddress)
	assert.True(t, order.ShippingCost.Equal(decimal.RequireFromString("8.00")))
	assert.Equal(t, "TRK-1", order.TrackingNumber)
}

func TestApplyOrderPatch_InvalidStatus(t *testing.T) {
	order := &domain.Order{Status: domain.OrderStatusPending}

	err := applyOrderPatch(order, domain.OrderPatch{Status: strPtr("NOT_A_STATUS")})

	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestApplyOrderPatch_InvalidPaymentMethod(t *testing.T) {
	order := &domain.Order{PaymentMethod: domain.PaymentCash}

	err := applyOrderPatch(order, domain.OrderPatch{PaymentMethod: strPtr("GOLD")})

	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, domain.PaymentCash, order.PaymentMethod)
}
