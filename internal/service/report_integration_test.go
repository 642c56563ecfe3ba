package service_test

import (
	"time"

	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/service"
)

func (s *IntegrationTestSuite) deliverOrder(admin domain.Principal, orderID int64) {
	_, err := s.OrderStatus.UpdateStatus(s.Ctx, admin, orderID, domain.OrderStatusDelivered)
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) TestSalesReport_OnlyDeliveredOrders() {
	buyer := s.seedUser("buyer")
	boss := s.seedUser("boss", domain.RoleAdmin)
	product := s.seedProduct("Widget", "20.00", 100)

	createOrder := func(quantity int32) *domain.Order {
		order, err := s.OrderCreation.CreateOrder(s.Ctx, buyer, service.CreateOrderInput{
			ShippingAddress: "Rua A, 1",
			Items: []service.CreateOrderItemInput{
				{ProductID: product.ID, Quantity: quantity},
			},
		})
		s.Require().NoError(err)
		return order
	}

	delivered := createOrder(1)
	s.deliverOrder(boss, delivered.ID)

	createOrder(2) // stays PENDING, must not show up

	today := time.Now()
	start := today.AddDate(0, 0, -1)
	end := today.AddDate(0, 0, 1)

	report, err := s.Reports.SalesReport(s.Ctx, start, end)
	s.Require().NoError(err)

	s.Require().Equal(1, report.TotalOrders)
	s.Require().Equal("20.00", report.TotalSales.StringFixed(2))
	s.Require().Equal("20.00", report.AverageOrderValue.StringFixed(2))
	s.Require().Len(report.DailySales, 3)
}

func (s *IntegrationTestSuite) TestStatusReport_CoversAllOrders() {
	buyer := s.seedUser("buyer")
	boss := s.seedUser("boss", domain.RoleAdmin)
	product := s.seedProduct("Widget", "15.00", 100)

	first, err := s.OrderCreation.CreateOrder(s.Ctx, buyer, service.CreateOrderInput{
		ShippingAddress: "Rua A, 1",
		Items:           []service.CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	s.Require().NoError(err)

	_, err = s.OrderCreation.CreateOrder(s.Ctx, buyer, service.CreateOrderInput{
		ShippingAddress: "Rua A, 1",
		Items:           []service.CreateOrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	s.Require().NoError(err)

	s.deliverOrder(boss, first.ID)

	report, err := s.Reports.StatusReport(s.Ctx)
	s.Require().NoError(err)

	s.Require().Equal(2, report.TotalOrders)
	s.Require().Equal(1, report.OrderCountByStatus["DELIVERED"])
	s.Require().Equal(1, report.OrderCountByStatus["PENDING"])
	s.Require().Equal("45.00", report.TotalValue.StringFixed(2))
}

func (s *IntegrationTestSuite) TestSalesReport_EmptyRange() {
	start := time.Now().AddDate(-1, 0, 0)
	end := start.AddDate(0, 0, 2)

	report, err := s.Reports.SalesReport(s.Ctx, start, end)
	s.Require().NoError(err)

	s.Require().Zero(report.TotalOrders)
	s.Require().True(report.AverageOrderValue.IsZero())
	s.Require().Len(report.DailySales, 3)
}
