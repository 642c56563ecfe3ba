package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kippeer/go-store-api/internal/service"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reports service.ReportService
	logger  *zap.Logger
}

func NewReportHandler(reports service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger,
	}
}

func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	startRaw := c.Query("startDate")
	endRaw := c.Query("endDate")
	if startRaw == "" || endRaw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "startDate and endDate query parameters are required",
		})
	}

	startDate, endDate, err := parseDateRange(startRaw, endRaw)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := h.reports.SalesReport(c.UserContext(), startDate, endDate)
	if err != nil {
		h.logger.Warn(
			"sales report failed",
			zap.Error(err),
		)

		return errorResponse(c, err)
	}

	return c.JSON(report)
}

func (h *ReportHandler) Status(c *fiber.Ctx) error {
	report, err := h.reports.StatusReport(c.UserContext())
	if err != nil {
		h.logger.Warn(
			"status report failed",
			zap.Error(err),
		)

		return errorResponse(c, err)
	}

	return c.JSON(report)
}

// parseDateRange reads date-only bounds and widens the end to the last
// instant of that day, so orders created at any time on the end date
// fall inside the range.
func parseDateRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid startDate, expected YYYY-MM-DD")
	}

	endDate, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid endDate, expected YYYY-MM-DD")
	}

	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, errors.New("endDate must not precede startDate")
	}

	endDate = endDate.AddDate(0, 0, 1).Add(-time.Nanosecond)

	return startDate, endDate, nil
}
