package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/export"
	"github.com/hrdiaspora/diaspora-service/internal/service"
)

// ReportsHandler serves the reporting endpoints.
type ReportsHandler struct {
	reports *service.ReportService
	exports *service.ExportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService, exports *service.ExportService) *ReportsHandler {
	return &ReportsHandler{reports: reports, exports: exports}
}

func (h *ReportsHandler) dateRange(c *fiber.Ctx) (domain.DateRange, error) {
	return h.reports.ResolveRange(c.Query("from"), c.Query("to"))
}

// Summary GET /reports/summary.
func (h *ReportsHandler) Summary(c *fiber.Ctx) error {
	rng, err := h.dateRange(c)
	if err != nil {
		return err
	}
	summary, err := h.reports.Summary(c.UserContext(), rng)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// DiasporasByPeriod GET /reports/diasporas-by-period.
func (h *ReportsHandler) DiasporasByPeriod(c *fiber.Ctx) error {
	rng, err := h.dateRange(c)
	if err != nil {
		return err
	}
	report, err := h.reports.DiasporasByPeriod(c.UserContext(), domain.ParsePeriodGroup(c.Query("group")), rng)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// ProgressByPurpose GET /reports/progress-by-purpose.
func (h *ReportsHandler) ProgressByPurpose(c *fiber.Ctx) error {
	rng, err := h.dateRange(c)
	if err != nil {
		return err
	}
	report, err := h.reports.ProgressByPurpose(c.UserContext(), c.Query("type"), rng)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// CasesByStatus GET /reports/cases-by-status.
func (h *ReportsHandler) CasesByStatus(c *fiber.Ctx) error {
	report, err := h.reports.CasesByStatus(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// ReferralsByOffice GET /reports/referrals-by-office.
func (h *ReportsHandler) ReferralsByOffice(c *fiber.Ctx) error {
	rng, err := h.dateRange(c)
	if err != nil {
		return err
	}
	report, err := h.reports.ReferralsByOffice(c.UserContext(), rng)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Export GET /reports/export downloads the reports as an xlsx workbook.
func (h *ReportsHandler) Export(c *fiber.Ctx) error {
	rng, err := h.dateRange(c)
	if err != nil {
		return err
	}
	result, err := h.exports.Export(c.UserContext(), domain.ParsePeriodGroup(c.Query("group")), rng)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", result.FileName))
	if result.ArchiveKey != "" {
		c.Set("X-Archive-Key", result.ArchiveKey)
	}
	return c.Send(result.Data)
}
