package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const localHandlerError = "handlerError"

// ErrorResponder renders handler errors through the app's ErrorHandler so
// the middleware above it sees the status the client actually gets. The
// original error stays available through HandlerError.
func ErrorResponder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}
		c.Locals(localHandlerError, err)
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			Logger.ErrorContext(c.UserContext(), "error handler failed", "error", herr, "path", c.Path())
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}
		return nil
	}
}

// HandlerError returns the error a handler produced for this request, or nil.
func HandlerError(c *fiber.Ctx) error {
	err, _ := c.Locals(localHandlerError).(error)
	return err
}

// responseStatus is the status the client receives. When err is still
// unresolved it is the status fiber's default handling would assign.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
