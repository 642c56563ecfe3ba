package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/pkg/applog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type userRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewUserRepository(pool *pgxpool.Pool, logger *zap.Logger) UserRepository {
	return &userRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/user_repo"),
	}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("username", user.Username),
	)

	query := `
		INSERT INTO users (username, email, password_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at;
	`

	roles := rolesToStrings(user.Roles)

	if err := r.pool.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash, roles).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			return nil, ErrUserAlreadyExists
		}

		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to insert user",
			zap.String("username", user.Username),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", id),
	)

	query := `
		SELECT id, username, email, password_hash, roles, created_at, updated_at
		FROM users
		WHERE id = $1;
	`

	return r.scanUser(ctx, span, r.pool.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByUsername")
	defer span.End()

	span.SetAttributes(
		attribute.String("username", username),
	)

	query := `
		SELECT id, username, email, password_hash, roles, created_at, updated_at
		FROM users
		WHERE username = $1;
	`

	return r.scanUser(ctx, span, r.pool.QueryRow(ctx, query, username))
}

func (r *userRepo) scanUser(ctx context.Context, span trace.Span, row pgx.Row) (*domain.User, error) {
	var user domain.User
	var roles []string

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&roles,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to scan user row",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error finding user: %w", err)
	}

	user.Roles = make([]domain.Role, 0, len(roles))
	for _, role := range roles {
		user.Roles = append(user.Roles, domain.Role(role))
	}

	return &user, nil
}

func rolesToStrings(roles []domain.Role) []string {
	result := make([]string, 0, len(roles))
	for _, role := range roles {
		result = append(result, string(role))
	}

	return result
}
