package handlers

import (
	"homebudget/internal/dto"
	"homebudget/internal/service"
	"homebudget/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
	respond     *Responder
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, respond *Responder, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		respond:     respond,
		logger:      logger,
	}
}

// GetProfile godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/users/me [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.userService.Get(c.UserContext(), userID)
	if err != nil {
		return h.respond.Error(c, err, "get profile")
	}

	return c.JSON(dto.NewUserResponse(user))
}

// UpdateProfile godoc
// @Summary Update username and/or email
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Security Bearer
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/users/me [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		return h.respond.Error(c, err, "update profile")
	}

	return c.JSON(dto.NewUserResponse(user))
}

// ChangePassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Security Bearer
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/users/me/password [patch]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.userService.ChangePassword(c.UserContext(), userID, &req); err != nil {
		return h.respond.Error(c, err, "change password")
	}

	return c.JSON(fiber.Map{
		"message": "Password updated",
	})
}

// DeleteAccount godoc
// @Summary Delete account
// @Description Delete the current user with all budgets and expenses
// @Tags users
// @Security Bearer
// @Success 204
// @Failure 401 {object} map[string]string
// @Router /api/v1/users/me [delete]
func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.userService.Delete(c.UserContext(), claims); err != nil {
		return h.respond.Error(c, err, "delete account")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
