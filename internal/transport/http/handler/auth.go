package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/service"
	"github.com/kippeer/go-store-api/internal/transport/http/middleware"
	"github.com/kippeer/go-store-api/pkg/applog"
	"github.com/kippeer/go-store-api/pkg/webutil"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService service.AuthService
	authz       service.AuthorizationService
	validate    *validator.Validate
	logger      *zap.Logger
}

type SignupInput struct {
	Username string   `json:"username" validate:"required,min=3"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Roles    []string `json:"roles"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func NewAuthHandler(authService service.AuthService, authz service.AuthorizationService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		authz:       authz,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	input := new(SignupInput)

	if err := c.BodyParser(input); err != nil {
		h.logger.Warn(
			"failed to parse body in signup",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": webutil.FormatValidationError(err),
		})
	}

	user, err := h.authService.Register(c.UserContext(), service.RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Roles:    input.Roles,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	applog.Info(
		c.UserContext(),
		h.logger,
		"signup succeeded",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return c.Status(fiber.StatusCreated).JSON(userResponse(user))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	input := new(LoginInput)

	if err := c.BodyParser(input); err != nil {
		h.logger.Warn(
			"failed to parse body in login",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": webutil.FormatValidationError(err),
		})
	}

	token, user, err := h.authService.Login(c.UserContext(), input.Username, input.Password)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  userResponse(user),
	})
}

func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "principal parsing error"})
	}

	user, err := h.authz.CurrentUser(c.UserContext(), principal)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(userResponse(user))
}

func userResponse(user *domain.User) fiber.Map {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}

	return fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"roles":    roles,
	}
}
