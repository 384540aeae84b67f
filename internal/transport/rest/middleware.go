package rest

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/metrics"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDHeader, requestID)
		c.Locals("rqID", requestID)
		c.SetUserContext(utils.WithRequestID(c.UserContext(), requestID))

		return c.Next()
	}
}

func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		slog.Info(
			"http request",
			slog.String("rqID", utils.GetRequestIDFromCtx(c.UserContext())),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("latency", time.Since(start)),
		)

		return err
	}
}

func Prometheus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		metrics.HttpDuration.WithLabelValues(
			c.Method(),
			c.Route().Path,
			strconv.Itoa(c.Response().StatusCode()),
		).Observe(time.Since(start).Seconds())

		return err
	}
}

// ErrorHandler maps domain errors to status codes and writes a JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		code, message = fiberErr.Code, fiberErr.Message
	case errors.Is(err, service.ErrNotFound), errors.Is(err, accounting.ErrUnknownStock):
		code, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, accounting.ErrInvalidTrade),
		errors.Is(err, accounting.ErrInvalidAmount),
		errors.Is(err, accounting.ErrInvalidRatio):
		code, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, accounting.ErrQuoteUnavailable):
		code, message = fiber.StatusBadGateway, err.Error()
	default:
		slog.Error(
			"http handler failed",
			slog.String("rqID", utils.GetRequestIDFromCtx(c.UserContext())),
			slog.String("path", c.Path()),
			slog.String("err", err.Error()),
		)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: utils.GetRequestIDFromCtx(c.UserContext()),
	})
}
