package handlers

import (
	"homebudget/internal/service"
	"homebudget/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Responder writes service errors as {"error": "..."} with a status
// derived from the error kind.
type Responder struct {
	hideForeignRecords bool
	logger             *zap.Logger
}

// NewResponder builds a Responder. With hideForeignRecords set, requests for
// another user's records get 404 instead of 403.
func NewResponder(hideForeignRecords bool, logger *zap.Logger) *Responder {
	return &Responder{
		hideForeignRecords: hideForeignRecords,
		logger:             logger,
	}
}

func (r *Responder) Error(c *fiber.Ctx, err error, op string) error {
	status, msg := fiber.StatusInternalServerError, "Internal server error"

	switch service.KindOf(err) {
	case service.KindValidation:
		status, msg = fiber.StatusBadRequest, err.Error()
	case service.KindConflict:
		status, msg = fiber.StatusConflict, err.Error()
	case service.KindAuth:
		status, msg = fiber.StatusUnauthorized, err.Error()
	case service.KindForbidden:
		if r.hideForeignRecords {
			status, msg = fiber.StatusNotFound, "not found"
		} else {
			status, msg = fiber.StatusForbidden, err.Error()
		}
	case service.KindNotFound:
		status, msg = fiber.StatusNotFound, err.Error()
	case service.KindDomain:
		status, msg = fiber.StatusUnprocessableEntity, err.Error()
	default:
		r.logger.Error(op+" failed", zap.Error(err), zap.String("path", c.Path()))
	}

	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals(middleware.LocalUserID).(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	return userID, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}

// pathID parses the :id route parameter.
func pathID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}
