package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return OrderStatus(s), nil
	}

	return "", fmt.Errorf("unknown order status %q", s)
}

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentPix          PaymentMethod = "PIX"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCash         PaymentMethod = "CASH"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCreditCard, PaymentDebitCard, PaymentPix,
		PaymentBankTransfer, PaymentCash:
		return PaymentMethod(s), nil
	}

	return "", fmt.Errorf("unknown payment method %q", s)
}

type Order struct {
	ID               int64           `db:"id" json:"id"`
	UserID           int64           `db:"user_id" json:"userId"`
	Status           OrderStatus     `db:"status" json:"status"`
	TotalAmount      decimal.Decimal `db:"total_amount" json:"totalAmount"`
	ShippingCost     decimal.Decimal `db:"shipping_cost" json:"shippingCost"`
	TaxAmount        decimal.Decimal `db:"tax_amount" json:"taxAmount"`
	DiscountAmount   decimal.Decimal `db:"discount_amount" json:"discountAmount"`
	PaymentMethod    PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	PaymentReference string          `db:"payment_reference" json:"paymentReference"`
	ShippingAddress  string          `db:"shipping_address" json:"shippingAddress"`
	TrackingNumber   string          `db:"tracking_number" json:"trackingNumber"`
	Items            []OrderItem     `db:"items" json:"items"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"orderId"`
	ProductID   int64           `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int32           `db:"quantity" json:"quantity"`
}

// RecalculateTotal keeps the invariant
// total = sum(item price * quantity) + shipping + tax - discount.
// Callers must invoke it after every mutation of items or monetary fields.
func (o *Order) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}

	o.TotalAmount = total.
		Add(o.ShippingCost).
		Add(o.TaxAmount).
		Sub(o.DiscountAmount)
}

// OrderPatch carries a partial update of an order header. Nil means absent,
// items are never updated through a patch.
type OrderPatch struct {
	Status           *string
	PaymentMethod    *string
	PaymentReference *string
	ShippingAddress  *string
	ShippingCost     *decimal.Decimal
	TaxAmount        *decimal.Decimal
	DiscountAmount   *decimal.Decimal
	TrackingNumber   *string
}

type OrderFilter struct {
	ID        *int64
	UserID    *int64
	Status    *OrderStatus
	StartDate *time.Time
	EndDate   *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}
