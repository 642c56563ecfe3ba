package service

import (
	"testing"

	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func admin() *domain.User {
	return &domain.User{ID: 1, Roles: []domain.Role{domain.RoleAdmin}}
}

func client(id int64) *domain.User {
	return &domain.User{ID: id, Roles: []domain.Role{domain.RoleClient}}
}

func pendingOrder(userID int64) *domain.Order {
	return &domain.Order{ID: 100, UserID: userID, Status: domain.OrderStatusPending}
}

func TestValidateStatusChange_AdminBypassesGraph(t *testing.T) {
	order := pendingOrder(42)
	order.Status = domain.OrderStatusDelivered

	for _, status := range []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
		domain.OrderStatusRefunded,
	} {
		assert.NoError(t, validateStatusChange(order, status, admin()), "status %s", status)
	}
}

func TestValidateStatusChange_NotOwner(t *testing.T) {
	order := pendingOrder(42)

	err := validateStatusChange(order, domain.OrderStatusProcessing, client(7))
	assert.ErrorIs(t, err, ErrOrderAccessDenied)
}

func TestValidateStatusChange_OwnerAllowedTransitions(t *testing.T) {
	order := pendingOrder(42)

	assert.NoError(t, validateStatusChange(order, domain.OrderStatusProcessing, client(42)))
	assert.NoError(t, validateStatusChange(order, domain.OrderStatusCancelled, client(42)))
}

func TestValidateStatusChange_AdminOnlyStatuses(t *testing.T) {
	order := pendingOrder(42)

	for _, status := range []domain.OrderStatus{
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
		domain.OrderStatusRefunded,
	} {
		err := validateStatusChange(order, status, client(42))
		assert.ErrorIs(t, err, ErrOrderAccessDenied, "status %s", status)
	}
}

func TestValidateStatusChange_CancelOnlyFromPending(t *testing.T) {
	order := pendingOrder(42)
	order.Status = domain.OrderStatusProcessing

	err := validateStatusChange(order, domain.OrderStatusCancelled, client(42))
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}
