package handler

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/service"
	"github.com/kippeer/go-store-api/internal/transport/http/middleware"
	"github.com/kippeer/go-store-api/pkg/applog"
	"github.com/kippeer/go-store-api/pkg/webutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderHandler struct {
	creation service.OrderCreationService
	status   service.OrderStatusService
	update   service.OrderUpdateService
	orders   service.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

type CreateOrderItemBody struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int32 `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderBody struct {
	ShippingAddress  string                `json:"shippingAddress" validate:"required"`
	ShippingCost     *decimal.Decimal      `json:"shippingCost"`
	TaxAmount        *decimal.Decimal      `json:"taxAmount"`
	DiscountAmount   *decimal.Decimal      `json:"discountAmount"`
	PaymentMethod    *string               `json:"paymentMethod"`
	PaymentReference *string               `json:"paymentReference"`
	TrackingNumber   *string               `json:"trackingNumber"`
	Items            []CreateOrderItemBody `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderBody struct {
	Status           *string          `json:"status"`
	PaymentMethod    *string          `json:"paymentMethod"`
	PaymentReference *string          `json:"paymentReference"`
	ShippingAddress  *string          `json:"shippingAddress"`
	ShippingCost     *decimal.Decimal `json:"shippingCost"`
	TaxAmount        *decimal.Decimal `json:"taxAmount"`
	DiscountAmount   *decimal.Decimal `json:"discountAmount"`
	TrackingNumber   *string          `json:"trackingNumber"`
}

type UpdateStatusBody struct {
	Status string `json:"status" validate:"required"`
}

func NewOrderHandler(
	creation service.OrderCreationService,
	status service.OrderStatusService,
	update service.OrderUpdateService,
	orders service.OrderService,
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{
		creation: creation,
		status:   status,
		update:   update,
		orders:   orders,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "principal parsing error"})
	}

	body := new(CreateOrderBody)
	if err := c.BodyParser(body); err != nil {
		h.logger.Warn(
			"failed to parse body in create order",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	if err := h.validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": webutil.FormatValidationError(err),
		})
	}

	items := make([]service.CreateOrderItemInput, 0, len(body.Items))
	for _, item := range body.Items {
		items = append(items, service.CreateOrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.creation.CreateOrder(c.UserContext(), principal, service.CreateOrderInput{
		ShippingAddress:  body.ShippingAddress,
		ShippingCost:     body.ShippingCost,
		TaxAmount:        body.TaxAmount,
		DiscountAmount:   body.DiscountAmount,
		PaymentMethod:    body.PaymentMethod,
		PaymentReference: body.PaymentReference,
		TrackingNumber:   body.TrackingNumber,
		Items:            items,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	applog.Info(
		c.UserContext(),
		h.logger,
		"create order succeeded",
		zap.Int64("created_id", order.ID),
	)

	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) FindByID(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "principal parsing error"})
	}

	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	order, err := h.orders.FindByID(c.UserContext(), principal, id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(order)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "principal parsing error"})
	}

	filter, err := orderFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	query := service.OrderQuery{
		Filter:          filter,
		CurrentUserOnly: listScopedToCaller(principal),
		Limit:           int64(c.QueryInt("limit", 10)),
		Offset:          int64(c.QueryInt("offset", 0)),
	}

	orders, total, err := h.orders.FindOrders(c.UserContext(), principal, query)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"orders": orders,
		"total":  total,
	})
}

func (h *OrderHandler) Update(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "principal parsing error"})
	}

	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	body := new(UpdateOrderBody)
	if err := c.BodyParser(body); err != nil {
		h.logger.Warn(
			"failed to parse body in update order",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	order, err := h.update.UpdateOrder(c.UserContext(), principal, id, domain.OrderPatch{
		Status:           body.Status,
		PaymentMethod:    body.PaymentMethod,
		PaymentReference: body.PaymentReference,
		ShippingAddress:  body.ShippingAddress,
		ShippingCost:     body.ShippingCost,
		TaxAmount:        body.TaxAmount,
		DiscountAmount:   body.DiscountAmount,
		TrackingNumber:   body.TrackingNumber,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(order)
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "principal parsing error"})
	}

	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	body := new(UpdateStatusBody)
	if err := c.BodyParser(body); err != nil {
		h.logger.Warn(
			"failed to parse body in update status",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	if err := h.validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": webutil.FormatValidationError(err),
		})
	}

	status, err := domain.ParseOrderStatus(body.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := h.status.UpdateStatus(c.UserContext(), principal, id, status)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(order)
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	if err := h.orders.Delete(c.UserContext(), id); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// listScopedToCaller decides whether a list request is forced onto the
// caller's own orders. Only admins see everyone's; operators reach other
// users' orders through reports, not the list endpoint.
func listScopedToCaller(p domain.Principal) bool {
	return !p.IsAdmin()
}

func orderFilterFromQuery(c *fiber.Ctx) (domain.OrderFilter, error) {
	var filter domain.OrderFilter

	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		filter.Status = &status
	}

	if raw := c.Query("userId"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, "invalid userId")
		}
		filter.UserID = &userID
	}

	if raw := c.Query("startDate"); raw != "" {
		startDate, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, "invalid startDate, expected YYYY-MM-DD")
		}
		filter.StartDate = &startDate
	}

	if raw := c.Query("endDate"); raw != "" {
		endDate, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, "invalid endDate, expected YYYY-MM-DD")
		}
		// date-only bound covers the whole end day
		endDate = endDate.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.EndDate = &endDate
	}

	if raw := c.Query("minAmount"); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, "invalid minAmount")
		}
		filter.MinAmount = &value
	}

	if raw := c.Query("maxAmount"); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, "invalid maxAmount")
		}
		filter.MaxAmount = &value
	}

	return filter, nil
}
