package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ValidationError carries per-field messages for a rejected request body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func ErrBadRequest(message string) error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func ErrUnauthorized(message string) error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func ErrForbidden(message string) error {
	return fiber.NewError(fiber.StatusForbidden, message)
}

func ErrNotFound(message string) error {
	return fiber.NewError(fiber.StatusNotFound, message)
}

func ErrConflict(message string) error {
	return fiber.NewError(fiber.StatusConflict, message)
}

// StatusOf maps an error returned by a handler to its HTTP status.
func StatusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
