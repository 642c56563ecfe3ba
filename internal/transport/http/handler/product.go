package handler

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/service"
	"github.com/kippeer/go-store-api/pkg/webutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService service.ProductService
	validate       *validator.Validate
	logger         *zap.Logger
}

type CreateProductInput struct {
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int32           `json:"stockQuantity" validate:"gte=0"`
	Active        *bool           `json:"active"`
}

type UpdateProductInput struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Category      *string          `json:"category"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int32           `json:"stockQuantity"`
	Active        *bool            `json:"active"`
}

func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validate:       validator.New(),
		logger:         logger,
	}
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	input := new(CreateProductInput)

	if err := c.BodyParser(input); err != nil {
		h.logger.Warn(
			"failed to parse body in create product",
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

	product := &domain.Product{
		Name:          input.Name,
		Description:   input.Description,
		Category:      input.Category,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		Active:        true,
	}
	if input.Active != nil {
		product.Active = *input.Active
	}

	result, err := h.productService.Create(c.UserContext(), product)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *ProductHandler) FindByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	product, err := h.productService.FindByID(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	input := new(UpdateProductInput)
	if err := c.BodyParser(input); err != nil {
		h.logger.Warn(
			"failed to parse body in update product",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	patch := domain.ProductPatch{
		Name:          input.Name,
		Description:   input.Description,
		Category:      input.Category,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		Active:        input.Active,
	}

	product, err := h.productService.Update(c.UserContext(), id, patch)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(product)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	if err := h.productService.Delete(c.UserContext(), id); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	filter, err := productFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	limit := int64(c.QueryInt("limit", 10))
	offset := int64(c.QueryInt("offset", 0))

	products, total, err := h.productService.List(c.UserContext(), filter, limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"products": products,
		"total":    total,
	})
}

func (h *ProductHandler) Search(c *fiber.Ctx) error {
	keyword := c.Query("q")
	if keyword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "q query parameter is required"})
	}

	limit := int64(c.QueryInt("limit", 10))
	offset := int64(c.QueryInt("offset", 0))

	products, total, err := h.productService.Search(c.UserContext(), keyword, limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"products": products,
		"total":    total,
	})
}

func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	threshold := int32(c.QueryInt("threshold", 10))

	products, err := h.productService.FindLowStock(c.UserContext(), threshold)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"products": products,
	})
}

func parseIDParam(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func productFilterFromQuery(c *fiber.Ctx) (domain.ProductFilter, error) {
	var filter domain.ProductFilter

	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}

	if description := c.Query("description"); description != "" {
		filter.Description = &description
	}

	if raw := c.Query("minPrice"); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, "invalid minPrice")
		}
		filter.MinPrice = &value
	}

	if raw := c.Query("maxPrice"); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, "invalid maxPrice")
		}
		filter.MaxPrice = &value
	}

	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, "invalid active")
		}
		filter.Active = &active
	}

	return filter, nil
}
