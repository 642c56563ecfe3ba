package service_test

import (
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/repository"
	"github.com/kippeer/go-store-api/internal/service"
	"github.com/shopspring/decimal"
)

func (s *IntegrationTestSuite) TestCreateOrder_Success() {
	principal := s.seedUser("buyer")
	notebook := s.seedProduct("Notebook", "3500.00", 5)
	mouse := s.seedProduct("Mouse", "99.90", 10)

	shipping := decimal.RequireFromString("25.00")

	order, err := s.OrderCreation.CreateOrder(s.Ctx, principal, service.CreateOrderInput{
		ShippingAddress: "Av. Central, 100",
		ShippingCost:    &shipping,
		Items: []service.CreateOrderItemInput{
			{ProductID: notebook.ID, Quantity: 1},
			{ProductID: mouse.ID, Quantity: 2},
		},
	})
	s.Require().NoError(err)
	s.Require().NotZero(order.ID)

	// 3500.00 + 199.80 + 25.00
	s.Require().Equal("3724.80", order.TotalAmount.StringFixed(2))
	s.Require().Equal(int32(4), s.stockOf(notebook.ID))
	s.Require().Equal(int32(8), s.stockOf(mouse.ID))

	stored, err := s.OrderRepo.GetByID(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Items, 2)
	s.Require().Equal("Notebook", stored.Items[0].ProductName)
}

func (s *IntegrationTestSuite) TestCreateOrder_InsufficientStockRollsBackEverything() {
	principal := s.seedUser("buyer")
	notebook := s.seedProduct("Notebook", "3500.00", 5)
	mouse := s.seedProduct("Mouse", "99.90", 1)

	_, err := s.OrderCreation.CreateOrder(s.Ctx, principal, service.CreateOrderInput{
		ShippingAddress: "Av. Central, 100",
		Items: []service.CreateOrderItemInput{
			{ProductID: notebook.ID, Quantity: 2},
			{ProductID: mouse.ID, Quantity: 3},
		},
	})
	s.Require().ErrorIs(err, service.ErrInsufficientStock)

	// the first item's decrement must have been rolled back
	s.Require().Equal(int32(5), s.stockOf(notebook.ID))
	s.Require().Equal(int32(1), s.stockOf(mouse.ID))

	orders, err := s.OrderRepo.FindAll(s.Ctx)
	s.Require().NoError(err)
	s.Require().Empty(orders)
}

func (s *IntegrationTestSuite) TestCreateOrder_InactiveProduct() {
	principal := s.seedUser("buyer")
	product := s.seedProduct("Hidden", "10.00", 5)

	inactive := false
	s.Require().NoError(s.ProductRepo.Update(s.Ctx, product.ID, &domain.ProductPatch{Active: &inactive}))

	_, err := s.OrderCreation.CreateOrder(s.Ctx, principal, service.CreateOrderInput{
		ShippingAddress: "Av. Central, 100",
		Items: []service.CreateOrderItemInput{
			{ProductID: product.ID, Quantity: 1},
		},
	})
	s.Require().ErrorIs(err, service.ErrProductUnavailable)
	s.Require().Equal(int32(5), s.stockOf(product.ID))
}

func (s *IntegrationTestSuite) TestCreateOrder_UnknownProduct() {
	principal := s.seedUser("buyer")

	_, err := s.OrderCreation.CreateOrder(s.Ctx, principal, service.CreateOrderInput{
		ShippingAddress: "Av. Central, 100",
		Items: []service.CreateOrderItemInput{
			{ProductID: 424242, Quantity: 1},
		},
	})
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestCreateOrder_EmptyItems() {
	principal := s.seedUser("buyer")

	_, err := s.OrderCreation.CreateOrder(s.Ctx, principal, service.CreateOrderInput{
		ShippingAddress: "Av. Central, 100",
	})
	s.Require().ErrorIs(err, service.ErrInvalidArgument)
}
