package handlers

import (
	"homebudget/internal/dto"
	"homebudget/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *service.ReportService
	respond       *Responder
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, respond *Responder, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		respond:       respond,
		logger:        logger,
	}
}

// Spending godoc
// @Summary Spending per budget
// @Description Limit, spent, savings and percentage spent for every budget
// @Tags reports
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.SpendingReportResponse
// @Router /api/v1/reports/spending [get]
func (h *ReportHandler) Spending(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	statuses, err := h.reportService.Spending(c.UserContext(), userID)
	if err != nil {
		return h.respond.Error(c, err, "spending report")
	}

	return c.JSON(dto.NewSpendingReportResponse(statuses))
}

// Savings godoc
// @Summary Savings summary
// @Description Totals over all budgets. Overspent budgets count as zero savings.
// @Tags reports
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.SavingsSummaryResponse
// @Router /api/v1/reports/savings [get]
func (h *ReportHandler) Savings(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	summary, err := h.reportService.Savings(c.UserContext(), userID)
	if err != nil {
		return h.respond.Error(c, err, "savings summary")
	}

	return c.JSON(dto.NewSavingsSummaryResponse(summary))
}
