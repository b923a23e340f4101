package serverutils

import (
	"errors"

	"lms-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders any error returned by a handler as an ErrorResponse.
// Internal errors are logged and reported without their message.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := StatusOf(err)
		res := ErrorResponse{Success: false, Code: code, Message: err.Error()}

		var ve *ValidationError
		if errors.As(err, &ve) {
			res.Errors = ve.Fields
		}
		if code >= fiber.StatusInternalServerError {
			if log != nil {
				log.Error("HTTP", "request failed", map[string]interface{}{
					"method": ctx.Method(),
					"path":   ctx.Path(),
					"error":  err.Error(),
				})
			}
			res.Message = "internal server error"
		}
		return ctx.Status(code).JSON(res)
	}
}

// ErrorHandlerMiddleware converts errors returned further down the chain
// into JSON responses so route groups behave the same under any app config.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	handle := ErrorHandler(log)
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return handle(ctx, err)
		}
		return nil
	}
}
