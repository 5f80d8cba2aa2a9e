package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vsinha/factorysim/pkg/application/dto"
	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/logger"
)

// statusFor maps a domain error to an HTTP status and error code
func statusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.Is(err, entities.ErrValidation):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, entities.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, entities.ErrInvalidState):
		return fiber.StatusConflict, "INVALID_STATE"
	case errors.Is(err, entities.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.As(err, &fe):
		switch fe.Code {
		case fiber.StatusNotFound:
			return fe.Code, "NOT_FOUND"
		case fiber.StatusBadRequest:
			return fe.Code, "INVALID_BODY"
		case fiber.StatusMethodNotAllowed:
			return fe.Code, "METHOD_NOT_ALLOWED"
		case fiber.StatusUpgradeRequired:
			return fe.Code, "UPGRADE_REQUIRED"
		}
		return fe.Code, "INTERNAL"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// ErrorHandler renders every error returned by a handler as an ErrorResponse
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, code := statusFor(err)
		ev := log.Warn()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Msg("request failed")

		message := err.Error()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			message = fe.Message
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
	}
}

func badBody(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
}
