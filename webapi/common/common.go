package common

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/fxconvert/pkg/service/exchange"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the error payload returned by every endpoint.
type ErrorResponse struct {
	Status    int    `json:"status"`    // HTTP status code
	Message   string `json:"message"`   // Human-readable explanation
	Timestamp int64  `json:"timestamp"` // Epoch milliseconds
}

// ErrorResponseJSON writes an ErrorResponse with the given status.
func ErrorResponseJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
}

// ErrorToStatusCode maps service errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, exchange.ErrUnsupportedCurrency):
		return fiber.StatusBadRequest
	case errors.Is(err, exchange.ErrNegativeAmount):
		return fiber.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorMessage returns the client-facing text for err. Internal failures are
// not described.
func ErrorMessage(err error) string {
	switch ErrorToStatusCode(err) {
	case fiber.StatusBadRequest:
		return err.Error()
	case fiber.StatusServiceUnavailable:
		return "Exchange rate service temporarily unavailable"
	default:
		return "Internal server error"
	}
}
