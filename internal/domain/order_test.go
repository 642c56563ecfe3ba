package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRecalculateTotal(t *testing.T) {
	order := Order{
		ShippingCost:   dec("10.00"),
		TaxAmount:      dec("5.50"),
		DiscountAmount: dec("3.00"),
		Items: []OrderItem{
			{Price: dec("19.99"), Quantity: 2},
			{Price: dec("100.00"), Quantity: 1},
		},
	}

	order.RecalculateTotal()

	// 39.98 + 100.00 + 10.00 + 5.50 - 3.00
	assert.True(t, order.TotalAmount.Equal(dec("152.48")), "got %s", order.TotalAmount)
}

func TestRecalculateTotal_NoItems(t *testing.T) {
	order := Order{
		ShippingCost:   dec("4.00"),
		TaxAmount:      dec("1.00"),
		DiscountAmount: dec("2.00"),
	}

	order.RecalculateTotal()

	assert.True(t, order.TotalAmount.Equal(dec("3.00")), "got %s", order.TotalAmount)
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, status)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)

	_, err = ParseOrderStatus("UNKNOWN")
	assert.Error(t, err)
}

func TestParsePaymentMethod(t *testing.T) {
	method, err := ParsePaymentMethod("PIX")
	require.NoError(t, err)
	assert.Equal(t, PaymentPix, method)

	_, err = ParsePaymentMethod("BITCOIN")
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("OPERATOR")
	require.NoError(t, err)
	assert.Equal(t, RoleOperator, role)

	_, err = ParseRole("SUPERUSER")
	assert.Error(t, err)
}

func TestPrincipalRoles(t *testing.T) {
	p := Principal{UserID: 1, Roles: []Role{RoleClient, RoleAdmin}}

	assert.True(t, p.IsAdmin())
	assert.True(t, p.HasRole(RoleClient))
	assert.False(t, p.HasRole(RoleOperator))
}
