package service

import (
	"context"
	"time"

	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportService derives sales and status summaries from persisted orders.
// It is strictly read-only.
type ReportService interface {
	SalesReport(ctx context.Context, startDate, endDate time.Time) (*domain.SalesReport, error)
	StatusReport(ctx context.Context) (*domain.StatusReport, error)
}

type reportService struct {
	orderRepo repository.OrderRepository
	logger    *zap.Logger
}

func NewReportService(orderRepo repository.OrderRepository, logger *zap.Logger) ReportService {
	return &reportService{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// SalesReport covers DELIVERED orders created within [startDate, endDate].
func (s *reportService) SalesReport(ctx context.Context, startDate, endDate time.Time) (*domain.SalesReport, error) {
	orders, err := s.orderRepo.FindByStatusBetween(ctx, domain.OrderStatusDelivered, startDate, endDate)
	if err != nil {
		return nil, err
	}

	return buildSalesReport(orders, startDate, endDate), nil
}

// StatusReport covers every order regardless of status or date.
func (s *reportService) StatusReport(ctx context.Context) (*domain.StatusReport, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	return buildStatusReport(orders), nil
}

func buildSalesReport(orders []domain.Order, startDate, endDate time.Time) *domain.SalesReport {
	totalSales := sumTotals(orders)

	averageOrderValue := decimal.Zero
	if len(orders) > 0 {
		averageOrderValue = totalSales.DivRound(decimal.NewFromInt(int64(len(orders))), 2)
	}

	return &domain.SalesReport{
		StartDate:            startDate,
		EndDate:              endDate,
		TotalSales:           totalSales,
		TotalOrders:          len(orders),
		AverageOrderValue:    averageOrderValue,
		SalesByPaymentMethod: sumByPaymentMethod(orders),
		DailySales:           buildDailySales(orders, startDate, endDate),
	}
}

func buildStatusReport(orders []domain.Order) *domain.StatusReport {
	countByStatus := make(map[string]int)
	valueByStatus := make(map[string]decimal.Decimal)

	for _, order := range orders {
		status := string(order.Status)
		countByStatus[status]++

		value, ok := valueByStatus[status]
		if !ok {
			value = decimal.Zero
		}
		valueByStatus[status] = value.Add(order.TotalAmount)
	}

	return &domain.StatusReport{
		OrderCountByStatus: countByStatus,
		TotalValueByStatus: valueByStatus,
		TotalOrders:        len(orders),
		TotalValue:         sumTotals(orders),
	}
}

// buildDailySales emits one bucket per calendar day from startDate to
// endDate inclusive, zero-valued for days without orders. Day boundaries
// follow the start date's location at local midnight.
func buildDailySales(orders []domain.Order, startDate, endDate time.Time) []domain.DailySales {
	byDay := make(map[time.Time][]domain.Order)
	for _, order := range orders {
		day := truncateToDay(order.CreatedAt.In(startDate.Location()))
		byDay[day] = append(byDay[day], order)
	}

	var result []domain.DailySales

	end := truncateToDay(endDate)
	for day := truncateToDay(startDate); !day.After(end); day = day.AddDate(0, 0, 1) {
		dailyOrders := byDay[day]

		result = append(result, domain.DailySales{
			Date:       day,
			TotalSales: sumTotals(dailyOrders),
			OrderCount: len(dailyOrders),
		})
	}

	return result
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sumTotals(orders []domain.Order) decimal.Decimal {
	total := decimal.Zero
	for _, order := range orders {
		total = total.Add(order.TotalAmount)
	}

	return total
}

func sumByPaymentMethod(orders []domain.Order) map[string]decimal.Decimal {
	result := make(map[string]decimal.Decimal)
	for _, order := range orders {
		method := string(order.PaymentMethod)

		value, ok := result[method]
		if !ok {
			value = decimal.Zero
		}
		result[method] = value.Add(order.TotalAmount)
	}

	return result
}
