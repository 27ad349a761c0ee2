package handlers

import (
	"homebudget/internal/dto"
	"homebudget/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
	respond        *Responder
	logger         *zap.Logger
}

func NewExpenseHandler(expenseService *service.ExpenseService, respond *Responder, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		respond:        respond,
		logger:         logger,
	}
}

// CreateExpense godoc
// @Summary Record an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body dto.CreateExpenseRequest true "Expense"
// @Security Bearer
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	expense, err := h.expenseService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return h.respond.Error(c, err, "create expense")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewExpenseResponse(expense))
}

// ListExpenses godoc
// @Summary List expenses
// @Tags expenses
// @Produce json
// @Param category query string false "Category"
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Security Bearer
// @Success 200 {array} dto.ExpenseResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) ListExpenses(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var q dto.ExpenseQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters")
	}

	expenses, err := h.expenseService.List(c.UserContext(), userID, q)
	if err != nil {
		return h.respond.Error(c, err, "list expenses")
	}

	return c.JSON(dto.NewExpenseListResponse(expenses))
}

// GetExpense godoc
// @Summary Get an expense
// @Tags expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Security Bearer
// @Success 200 {object} dto.ExpenseResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	expenseID, ok := pathID(c)
	if !ok {
		return badRequest(c, "Invalid expense ID")
	}

	expense, err := h.expenseService.Get(c.UserContext(), userID, expenseID)
	if err != nil {
		return h.respond.Error(c, err, "get expense")
	}

	return c.JSON(dto.NewExpenseResponse(expense))
}

// UpdateExpense godoc
// @Summary Update an expense
// @Description Change amount, category or date. Absent fields are kept.
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param request body dto.UpdateExpenseRequest true "Fields to change"
// @Security Bearer
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/expenses/{id} [patch]
func (h *ExpenseHandler) UpdateExpense(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	expenseID, ok := pathID(c)
	if !ok {
		return badRequest(c, "Invalid expense ID")
	}

	var req dto.UpdateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	expense, err := h.expenseService.Update(c.UserContext(), userID, expenseID, &req)
	if err != nil {
		return h.respond.Error(c, err, "update expense")
	}

	return c.JSON(dto.NewExpenseResponse(expense))
}

// DeleteExpense godoc
// @Summary Delete an expense
// @Tags expenses
// @Param id path string true "Expense ID"
// @Security Bearer
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	expenseID, ok := pathID(c)
	if !ok {
		return badRequest(c, "Invalid expense ID")
	}

	if err := h.expenseService.Delete(c.UserContext(), userID, expenseID); err != nil {
		return h.respond.Error(c, err, "delete expense")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
