package service

import (
	"context"

	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/repository"
	"github.com/kippeer/go-store-api/pkg/applog"
	"go.uber.org/zap"
)

// AuthorizationService resolves the acting principal to a user record and
// decides whether that user may see or mutate a given order.
type AuthorizationService interface {
	CurrentUser(ctx context.Context, principal domain.Principal) (*domain.User, error)
	CheckAccess(user *domain.User, order *domain.Order) error
	CheckUpdatePermission(user *domain.User, order *domain.Order) error
}

type authzService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewAuthorizationService(userRepo repository.UserRepository, logger *zap.Logger) AuthorizationService {
	return &authzService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// CurrentUser fails with repository.ErrUserNotFound when the principal does
// not resolve. That should not happen for an authenticated request; it is
// surfaced as its own failure mode rather than swallowed.
func (s *authzService) CurrentUser(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		applog.Error(
			ctx,
			s.logger,
			"Principal does not resolve to a user",
			zap.Int64("user_id", principal.UserID),
			zap.Error(err),
		)

		return nil, err
	}

	return user, nil
}

func (s *authzService) CheckAccess(user *domain.User, order *domain.Order) error {
	if !hasOrderPermission(user, order) {
		return ErrOrderAccessDenied
	}

	return nil
}

// CheckUpdatePermission applies the same rule as CheckAccess: the design
// does not distinguish view from update beyond ownership or admin.
func (s *authzService) CheckUpdatePermission(user *domain.User, order *domain.Order) error {
	return s.CheckAccess(user, order)
}

func hasOrderPermission(user *domain.User, order *domain.Order) bool {
	return user.IsAdmin() || order.UserID == user.ID
}
