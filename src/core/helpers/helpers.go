package helpers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Camier/searxng-convivial-instance/src/core/apperr"
)

// Initialize a validator instance using go-playground's validator package
var Validator = validator.New()

// Validate checks the struct fields against the specified validation tags.
func Validate(val interface{}) error {
	return Validator.Struct(val)
}

// HandleSuccess sends a structured JSON response for successful requests.
func HandleSuccess(context *fiber.Ctx, statusCode int, message string, data interface{}) error {
	return context.Status(statusCode).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"error":   nil,
		"data":    data,
	})
}

// HandleError sends a structured JSON response for errors.
func HandleError(context *fiber.Ctx, statusCode int, message string, err error) error {
	var errText interface{}
	if err != nil {
		errText = err.Error()
	}
	return context.Status(statusCode).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"error":   errText,
		"data":    nil,
	})
}

// HandleServiceError maps the apperr taxonomy onto HTTP status codes.
func HandleServiceError(context *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return HandleError(context, fiber.StatusNotFound, "Not found", err)
	case errors.Is(err, apperr.ErrForbidden):
		return HandleError(context, fiber.StatusForbidden, "Forbidden", err)
	case errors.Is(err, apperr.ErrRateLimited):
		return HandleError(context, fiber.StatusTooManyRequests, "Rate limited", err)
	case errors.Is(err, apperr.ErrValidation):
		return HandleError(context, fiber.StatusUnprocessableEntity, "Validation failed", err)
	case errors.Is(err, apperr.ErrStorageUnavailable):
		return HandleError(context, fiber.StatusServiceUnavailable, "Backend unavailable", err)
	default:
		return HandleError(context, fiber.StatusInternalServerError, "Internal error", err)
	}
}
