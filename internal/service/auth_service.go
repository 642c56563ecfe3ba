package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/repository"
	"github.com/kippeer/go-store-api/pkg/applog"
	"github.com/kippeer/go-store-api/pkg/jwtauth"
	"github.com/kippeer/go-store-api/pkg/passcheck"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		hasher:    hasher,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := passcheck.Validate(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	roles, err := parseRoles(input.Roles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		applog.Error(
			ctx,
			s.logger,
			"Error hashing password",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Roles:        roles,
	}

	result, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			applog.Info(
				ctx,
				s.logger,
				"User already exists",
				zap.String("username", input.Username),
			)

			return nil, err
		}

		applog.Error(
			ctx,
			s.logger,
			"Error creating user",
			zap.String("username", input.Username),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return result, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		applog.Warn(
			ctx,
			s.logger,
			"Login failed: user lookup",
			zap.String("username", username),
		)

		return "", nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		applog.Warn(
			ctx,
			s.logger,
			"Login failed: bad password",
			zap.String("username", username),
		)

		return "", nil, ErrInvalidCredentials
	}

	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}

	token, err := jwtauth.GenerateToken(user.ID, user.Username, roles, s.jwtSecret, s.tokenTTL)
	if err != nil {
		applog.Error(
			ctx,
			s.logger,
			"Failed to generate token",
			zap.Error(err),
		)

		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

// parseRoles validates the requested role set against the closed role
// enumeration. An empty request gets the default CLIENT role.
func parseRoles(raw []string) ([]domain.Role, error) {
	if len(raw) == 0 {
		return []domain.Role{domain.RoleClient}, nil
	}

	roles := make([]domain.Role, 0, len(raw))
	for _, r := range raw {
		role, err := domain.ParseRole(r)
		if err != nil {
			return nil, err
		}

		roles = append(roles, role)
	}

	return roles, nil
}
