package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SalesReport struct {
	StartDate            time.Time                  `json:"start_date"`
	EndDate              time.Time                  `json:"end_date"`
	TotalSales           decimal.Decimal            `json:"total_sales"`
	TotalOrders          int                        `json:"total_orders"`
	AverageOrderValue    decimal.Decimal            `json:"average_order_value"`
	SalesByPaymentMethod map[string]decimal.Decimal `json:"sales_by_payment_method"`
	DailySales           []DailySales               `json:"daily_sales"`
}

type DailySales struct {
	Date       time.Time       `json:"date"`
	TotalSales decimal.Decimal `json:"total_sales"`
	OrderCount int             `json:"order_count"`
}

type StatusReport struct {
	OrderCountByStatus map[string]int             `json:"order_count_by_status"`
	TotalValueByStatus map[string]decimal.Decimal `json:"total_value_by_status"`
	TotalOrders        int                        `json:"total_orders"`
	TotalValue         decimal.Decimal            `json:"total_value"`
}
