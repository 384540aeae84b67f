package rest

import (
	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewApp(cfg *config.Config, handler *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "portfolio_tracker",
		ReadTimeout:           cfg.Http.ReadTimeout,
		WriteTimeout:          cfg.Http.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(RequestID())
	app.Use(Logger())

	SetupRoutes(app, handler)

	return app
}

func SetupRoutes(app *fiber.App, handler *Handler) {
	app.Get("/health", handler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")
	v1.Use(Prometheus())

	v1.Get("/summary", handler.GetSummary)
	v1.Get("/holdings", handler.GetHoldings)
	v1.Get("/trades", handler.GetTrades)
	v1.Get("/stocks/:code", handler.GetStock)
}
