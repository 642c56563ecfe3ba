package service_test

import (
	"sync"

	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/service"
)

func (s *IntegrationTestSuite) createPendingOrder(principal domain.Principal) *domain.Order {
	product := s.seedProduct("Widget", "10.00", 100)

	order, err := s.OrderCreation.CreateOrder(s.Ctx, principal, service.CreateOrderInput{
		ShippingAddress: "Rua A, 1",
		Items: []service.CreateOrderItemInput{
			{ProductID: product.ID, Quantity: 1},
		},
	})
	s.Require().NoError(err)

	return order
}

func (s *IntegrationTestSuite) TestUpdateStatus_OwnerCancelsPending() {
	owner := s.seedUser("owner")
	order := s.createPendingOrder(owner)

	updated, err := s.OrderStatus.UpdateStatus(s.Ctx, owner, order.ID, domain.OrderStatusCancelled)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusCancelled, updated.Status)

	stored, err := s.OrderRepo.GetByID(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusCancelled, stored.Status)
}

func (s *IntegrationTestSuite) TestUpdateStatus_OwnerCannotShip() {
	owner := s.seedUser("owner")
	order := s.createPendingOrder(owner)

	_, err := s.OrderStatus.UpdateStatus(s.Ctx, owner, order.ID, domain.OrderStatusShipped)
	s.Require().ErrorIs(err, service.ErrOrderAccessDenied)
}

func (s *IntegrationTestSuite) TestUpdateStatus_StrangerDenied() {
	owner := s.seedUser("owner")
	stranger := s.seedUser("stranger")
	order := s.createPendingOrder(owner)

	_, err := s.OrderStatus.UpdateStatus(s.Ctx, stranger, order.ID, domain.OrderStatusProcessing)
	s.Require().ErrorIs(err, service.ErrOrderAccessDenied)
}

func (s *IntegrationTestSuite) TestUpdateStatus_AdminSetsAnyStatus() {
	owner := s.seedUser("owner")
	boss := s.seedUser("boss", domain.RoleAdmin)
	order := s.createPendingOrder(owner)

	updated, err := s.OrderStatus.UpdateStatus(s.Ctx, boss, order.ID, domain.OrderStatusRefunded)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusRefunded, updated.Status)
}

func (s *IntegrationTestSuite) TestUpdateStatus_CancelAfterProcessingRejected() {
	owner := s.seedUser("owner")
	boss := s.seedUser("boss", domain.RoleAdmin)
	order := s.createPendingOrder(owner)

	_, err := s.OrderStatus.UpdateStatus(s.Ctx, boss, order.ID, domain.OrderStatusProcessing)
	s.Require().NoError(err)

	_, err = s.OrderStatus.UpdateStatus(s.Ctx, owner, order.ID, domain.OrderStatusCancelled)
	s.Require().ErrorIs(err, service.ErrInvalidStatusTransition)
}

func (s *IntegrationTestSuite) TestUpdateOrder_RecomputesTotal() {
	owner := s.seedUser("owner")
	order := s.createPendingOrder(owner)

	shipping := "50.00"
	patch := domain.OrderPatch{ShippingCost: decFromString(shipping)}

	updated, err := s.OrderUpdate.UpdateOrder(s.Ctx, owner, order.ID, patch)
	s.Require().NoError(err)

	// item total 10.00 plus the new shipping cost
	s.Require().Equal("60.00", updated.TotalAmount.StringFixed(2))
}

func (s *IntegrationTestSuite) TestUpdateOrder_ConcurrentPatchesBothPersist() {
	owner := s.seedUser("owner")
	order := s.createPendingOrder(owner)

	tracking := "TRK-9"

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := s.OrderUpdate.UpdateOrder(s.Ctx, owner, order.ID, domain.OrderPatch{
			TrackingNumber: &tracking,
		})
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := s.OrderUpdate.UpdateOrder(s.Ctx, owner, order.ID, domain.OrderPatch{
			ShippingCost: decFromString("50.00"),
		})
		errs <- err
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	// whichever patch lands second must build on the first one's commit,
	// so both fields survive regardless of ordering
	stored, err := s.OrderRepo.GetByID(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Equal("TRK-9", stored.TrackingNumber)
	s.Require().Equal("50.00", stored.ShippingCost.StringFixed(2))
	s.Require().Equal("60.00", stored.TotalAmount.StringFixed(2))
}

func (s *IntegrationTestSuite) TestFindByID_StrangerDenied() {
	owner := s.seedUser("owner")
	stranger := s.seedUser("stranger")
	order := s.createPendingOrder(owner)

	_, err := s.Orders.FindByID(s.Ctx, stranger, order.ID)
	s.Require().ErrorIs(err, service.ErrOrderAccessDenied)

	found, err := s.Orders.FindByID(s.Ctx, owner, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(order.ID, found.ID)
}

func (s *IntegrationTestSuite) TestDeleteOrder_RemovesItemsKeepsStock() {
	owner := s.seedUser("owner")
	product := s.seedProduct("Widget", "10.00", 10)

	order, err := s.OrderCreation.CreateOrder(s.Ctx, owner, service.CreateOrderInput{
		ShippingAddress: "Rua A, 1",
		Items: []service.CreateOrderItemInput{
			{ProductID: product.ID, Quantity: 3},
		},
	})
	s.Require().NoError(err)
	s.Require().Equal(int32(7), s.stockOf(product.ID))

	s.Require().NoError(s.Orders.Delete(s.Ctx, order.ID))

	// deleting the order does not return the reserved stock
	s.Require().Equal(int32(7), s.stockOf(product.ID))

	var itemCount int
	err = s.DbPool.QueryRow(s.Ctx, "SELECT COUNT(*) FROM order_items WHERE order_id = $1", order.ID).Scan(&itemCount)
	s.Require().NoError(err)
	s.Require().Zero(itemCount)
}
