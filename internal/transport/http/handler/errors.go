package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/kippeer/go-store-api/internal/repository"
	"github.com/kippeer/go-store-api/internal/service"
)

// statusFromError translates service and repository sentinels into HTTP
// status codes. Anything unrecognized is a 500.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrOrderNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrOrderAccessDenied):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, repository.ErrUserAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	code := statusFromError(err)

	message := err.Error()
	if code == fiber.StatusInternalServerError {
		message = "internal error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
