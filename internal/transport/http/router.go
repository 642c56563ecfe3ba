package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/transport/http/handler"
	"github.com/kippeer/go-store-api/internal/transport/http/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Order   *handler.OrderHandler
	Report  *handler.ReportHandler
}

func RegisterRoutes(app *fiber.App, h *Handlers, jwtSecret string) {
	authGroup := app.Group("/api/auth")

	authGroup.Post("/signup", h.Auth.Signup)
	authGroup.Post("/login", h.Auth.Login)

	api := app.Group("/api", middleware.NewAuthMiddleware(jwtSecret))
	api.Get("/auth/me", h.Auth.GetMe)

	staffOnly := middleware.NewRequireRolesMiddleware(domain.RoleAdmin, domain.RoleOperator)
	adminOnly := middleware.NewRequireRolesMiddleware(domain.RoleAdmin)

	product := api.Group("/products")
	product.Get("/search", h.Product.Search)
	product.Get("/low-stock", staffOnly, h.Product.LowStock)
	product.Get("/:id", h.Product.FindByID)
	product.Get("", h.Product.List)
	product.Post("", staffOnly, h.Product.Create)
	product.Patch("/:id", staffOnly, h.Product.Update)
	product.Delete("/:id", adminOnly, h.Product.Delete)

	order := api.Group("/orders")
	order.Post("", h.Order.Create)
	order.Get("/:id", h.Order.FindByID)
	order.Get("", h.Order.List)
	order.Patch("/:id/status", h.Order.UpdateStatus)
	order.Patch("/:id", h.Order.Update)
	order.Delete("/:id", adminOnly, h.Order.Delete)

	report := api.Group("/reports", staffOnly)
	report.Get("/sales", h.Report.Sales)
	report.Get("/orders/status", h.Report.Status)
}
