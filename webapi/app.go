package webapi

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/amirasaad/fxconvert/pkg/config"
	"github.com/amirasaad/fxconvert/pkg/service/exchange"
	"github.com/amirasaad/fxconvert/webapi/common"
	"github.com/amirasaad/fxconvert/webapi/currency"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	allowMethods = "GET,POST,OPTIONS"
	allowHeaders = "Content-Type,Authorization,X-Request-ID"
)

// NewApp builds the stub pricing API.
func NewApp(svc *exchange.Service, cfg *config.Server, logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Default to 500 if status code cannot be determined
			status := fiber.StatusInternalServerError
			message := "Internal server error"
			var e *fiber.Error
			if errors.As(err, &e) {
				status = e.Code
				message = e.Message
			}
			return common.ErrorResponseJSON(c, status, message)
		},
	})

	app.Use(recover.New())
	app.Use(corsHeaders)
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: allowMethods,
		AllowHeaders: allowHeaders,
	}))
	reg := prometheus.NewRegistry()
	requests := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "fxconvert_stub_requests_total",
		Help: "Stub API requests by route and status",
	}, []string{"route", "status"})

	app.Use(requestLogger(logger.With("component", "stub_api"), requests))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Rate limit exceeded")
		},
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("fxconvert stub API is running")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	currency.Routes(app.Group(cfg.BasePath), svc)

	return app
}

// corsHeaders stamps the CORS headers on every response, including requests
// without an Origin header. Preflights are answered by the cors middleware.
func corsHeaders(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, allowMethods)
	c.Set(fiber.HeaderAccessControlAllowHeaders, allowHeaders)
	return c.Next()
}

func requestLogger(logger *slog.Logger, requests *prometheus.CounterVec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}
		requests.WithLabelValues(c.Route().Path, strconv.Itoa(status)).Inc()
		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"request_id", c.Get("X-Request-ID"),
			"duration", time.Since(start),
		}
		if err != nil {
			attrs = append(attrs, "error", err)
		}
		logger.Debug("Request handled", attrs...)
		return err
	}
}
