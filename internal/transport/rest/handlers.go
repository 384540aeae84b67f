package rest

import (
	"context"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/gofiber/fiber/v2"
)

type PortfolioService interface {
	PortfolioSummary(ctx context.Context, live bool) (model.PortfolioSummary, error)
	Holdings(ctx context.Context, live bool) ([]model.Holding, error)
	ListTrades(ctx context.Context, filter model.TradeFilter) ([]model.TradeEvent, error)
	StockOverview(ctx context.Context, code string, live bool) (model.StockSummary, model.Holding, error)
}

type Handler struct {
	cfg              *config.Config
	portfolioService PortfolioService
}

func NewHandler(cfg *config.Config, portfolioService PortfolioService) *Handler {
	return &Handler{cfg: cfg, portfolioService: portfolioService}
}

func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok", Time: time.Now()})
}

// GetSummary serves live prices unless ?live=false.
func (h *Handler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.portfolioService.PortfolioSummary(c.UserContext(), c.QueryBool("live", true))
	if err != nil {
		return err
	}
	return c.JSON(toSummary(summary, h.cfg.Report.Currency))
}

func (h *Handler) GetHoldings(c *fiber.Ctx) error {
	holdings, err := h.portfolioService.Holdings(c.UserContext(), c.QueryBool("live", true))
	if err != nil {
		return err
	}

	res := make([]HoldingResponse, 0, len(holdings))
	for _, holding := range holdings {
		res = append(res, toHolding(holding))
	}
	return c.JSON(res)
}

// GetTrades filters by ?code, ?from and ?to (YYYY-MM-DD) and ?limit, newest first.
func (h *Handler) GetTrades(c *fiber.Ctx) error {
	filter := model.TradeFilter{
		StockCode: strings.TrimSpace(c.Query("code")),
		Limit:     c.QueryInt("limit", 100),
		Newest:    true,
	}
	if filter.Limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must not be negative")
	}

	var err error
	if filter.From, err = queryDate(c, "from"); err != nil {
		return err
	}
	if filter.To, err = queryDate(c, "to"); err != nil {
		return err
	}

	trades, err := h.portfolioService.ListTrades(c.UserContext(), filter)
	if err != nil {
		return err
	}

	res := make([]TradeResponse, 0, len(trades))
	for _, t := range trades {
		res = append(res, toTrade(t))
	}
	return c.JSON(res)
}

func (h *Handler) GetStock(c *fiber.Ctx) error {
	summary, holding, err := h.portfolioService.StockOverview(c.UserContext(), c.Params("code"), c.QueryBool("live", true))
	if err != nil {
		return err
	}
	return c.JSON(toStock(summary, holding))
}

func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key+" date (use YYYY-MM-DD)")
	}
	return &t, nil
}
