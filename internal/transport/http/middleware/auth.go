package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/pkg/jwtauth"
)

const PrincipalKey = "principal"

func NewAuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: missed header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: Invalid header format"})
		}

		claims, err := jwtauth.ValidateToken(parts[1], jwtSecret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: Invalid token"})
		}

		roles := make([]domain.Role, 0, len(claims.Roles))
		for _, raw := range claims.Roles {
			role, err := domain.ParseRole(raw)
			if err != nil {
				continue
			}
			roles = append(roles, role)
		}

		c.Locals(PrincipalKey, domain.Principal{
			UserID:   claims.UserID,
			Username: claims.Username,
			Roles:    roles,
		})

		return c.Next()
	}
}

// NewRequireRolesMiddleware rejects requests whose principal carries none of
// the given roles. It must run after NewAuthMiddleware.
func NewRequireRolesMiddleware(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromCtx(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: missed user"})
		}

		for _, role := range roles {
			if principal.HasRole(role) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden: insufficient role"})
	}
}

func PrincipalFromCtx(c *fiber.Ctx) (domain.Principal, bool) {
	principal, ok := c.Locals(PrincipalKey).(domain.Principal)
	return principal, ok
}
