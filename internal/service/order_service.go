package service

import (
	"context"

	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/repository"
	"github.com/kippeer/go-store-api/pkg/applog"
	"go.uber.org/zap"
)

type OrderQuery struct {
	Filter          domain.OrderFilter
	CurrentUserOnly bool
	Limit           int64
	Offset          int64
}

// OrderService covers the read and delete side of orders. Creation,
// partial update and status transitions live in their own services.
type OrderService interface {
	FindByID(ctx context.Context, principal domain.Principal, id int64) (*domain.Order, error)
	FindOrders(ctx context.Context, principal domain.Principal, query OrderQuery) ([]domain.Order, int64, error)
	Delete(ctx context.Context, id int64) error
}

type orderService struct {
	orderRepo repository.OrderRepository
	authz     AuthorizationService
	logger    *zap.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, authz AuthorizationService, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		authz:     authz,
		logger:    logger,
	}
}

func (s *orderService) FindByID(ctx context.Context, principal domain.Principal, id int64) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user, err := s.authz.CurrentUser(ctx, principal)
	if err != nil {
		return nil, err
	}

	if err := s.authz.CheckAccess(user, order); err != nil {
		applog.Warn(
			ctx,
			s.logger,
			"Order access denied",
			zap.Int64("order_id", id),
			zap.Int64("user_id", user.ID),
		)

		return nil, err
	}

	return order, nil
}

func (s *orderService) FindOrders(ctx context.Context, principal domain.Principal, query OrderQuery) ([]domain.Order, int64, error) {
	// A lookup by id goes through the access check instead of the filter.
	if query.Filter.ID != nil {
		order, err := s.FindByID(ctx, principal, *query.Filter.ID)
		if err != nil {
			return nil, 0, err
		}

		return []domain.Order{*order}, 1, nil
	}

	filter := query.Filter
	if query.CurrentUserOnly {
		user, err := s.authz.CurrentUser(ctx, principal)
		if err != nil {
			return nil, 0, err
		}

		filter.UserID = &user.ID
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	return s.orderRepo.List(ctx, &filter, limit, query.Offset)
}

// Delete removes the order aggregate. Reserved stock is NOT returned to
// the products; see the open question recorded in DESIGN.md.
func (s *orderService) Delete(ctx context.Context, id int64) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		applog.Warn(
			ctx,
			s.logger,
			"Failed to delete order",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return err
	}

	applog.Info(
		ctx,
		s.logger,
		"Order deleted",
		zap.Int64("order_id", id),
	)

	return nil
}
