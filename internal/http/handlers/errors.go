package handlers

import (
	"github.com/fundhive/backend/internal/http/dto"
	"github.com/fundhive/backend/internal/middleware"
	"github.com/fundhive/backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError translates a service error to a status code. Validation
// failures surface their message; internal errors never leak details to
// the client.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	reqID, _ := c.Locals(middleware.CtxRequestID).(string)

	switch {
	case models.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error(), RequestID: reqID})
	case models.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error(), RequestID: reqID})
	case models.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error(), RequestID: reqID})
	default:
		log.Error("request failed",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error", RequestID: reqID})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg})
}
