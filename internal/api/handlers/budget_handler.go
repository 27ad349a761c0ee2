package handlers

import (
	"homebudget/internal/dto"
	"homebudget/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type BudgetHandler struct {
	budgetService *service.BudgetService
	respond       *Responder
	logger        *zap.Logger
}

func NewBudgetHandler(budgetService *service.BudgetService, respond *Responder, logger *zap.Logger) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		respond:       respond,
		logger:        logger,
	}
}

// CreateBudget godoc
// @Summary Create a budget
// @Description Create a spending limit for a category. One budget per category.
// @Tags budgets
// @Accept json
// @Produce json
// @Param request body dto.CreateBudgetRequest true "Budget"
// @Security Bearer
// @Success 201 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) CreateBudget(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateBudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	budget, err := h.budgetService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return h.respond.Error(c, err, "create budget")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewBudgetResponse(*budget))
}

// ListBudgets godoc
// @Summary List budgets
// @Description Budgets with spent and savings computed from current expenses
// @Tags budgets
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.BudgetResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) ListBudgets(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	budgets, err := h.budgetService.List(c.UserContext(), userID)
	if err != nil {
		return h.respond.Error(c, err, "list budgets")
	}

	return c.JSON(dto.NewBudgetListResponse(budgets))
}

// GetBudget godoc
// @Summary Get a budget
// @Tags budgets
// @Produce json
// @Param id path string true "Budget ID"
// @Security Bearer
// @Success 200 {object} dto.BudgetResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	budgetID, ok := pathID(c)
	if !ok {
		return badRequest(c, "Invalid budget ID")
	}

	budget, err := h.budgetService.Get(c.UserContext(), userID, budgetID)
	if err != nil {
		return h.respond.Error(c, err, "get budget")
	}

	return c.JSON(dto.NewBudgetResponse(*budget))
}

// UpdateBudget godoc
// @Summary Update a budget
// @Description Change category, limit or image URL. Absent fields are kept.
// @Tags budgets
// @Accept json
// @Produce json
// @Param id path string true "Budget ID"
// @Param request body dto.UpdateBudgetRequest true "Fields to change"
// @Security Bearer
// @Success 200 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/budgets/{id} [patch]
func (h *BudgetHandler) UpdateBudget(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	budgetID, ok := pathID(c)
	if !ok {
		return badRequest(c, "Invalid budget ID")
	}

	var req dto.UpdateBudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	budget, err := h.budgetService.Update(c.UserContext(), userID, budgetID, &req)
	if err != nil {
		return h.respond.Error(c, err, "update budget")
	}

	return c.JSON(dto.NewBudgetResponse(*budget))
}

// DeleteBudget godoc
// @Summary Delete a budget
// @Tags budgets
// @Param id path string true "Budget ID"
// @Security Bearer
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	budgetID, ok := pathID(c)
	if !ok {
		return badRequest(c, "Invalid budget ID")
	}

	if err := h.budgetService.Delete(c.UserContext(), userID, budgetID); err != nil {
		return h.respond.Error(c, err, "delete budget")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
