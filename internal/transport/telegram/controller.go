package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/converter/telebotConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg = "something went wrong..."
	helpMsg        = `Commands:
/summary - portfolio summary
/holdings - open positions
/stock <code> - one stock with FIFO lots
/trades [code] - recent trades
/alerts - alert rules`
)

type PortfolioService interface {
	PortfolioSummary(ctx context.Context, live bool) (model.PortfolioSummary, error)
	Holdings(ctx context.Context, live bool) ([]model.Holding, error)
	StockOverview(ctx context.Context, code string, live bool) (model.StockSummary, model.Holding, error)
	TradeHistory(ctx context.Context, code string, limit int) ([]model.TradeEvent, error)
	ListAlertRules(ctx context.Context, code string, onlyActive bool) ([]model.AlertRule, error)
}

type Controller struct {
	cfg              *config.Config
	portfolioService PortfolioService
}

func NewController(cfg *config.Config, portfolioService PortfolioService) *Controller {
	return &Controller{
		cfg:              cfg,
		portfolioService: portfolioService,
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	return c.Send("Hello! I track your BSE portfolio.\n\n" + helpMsg)
}

func (ctrl *Controller) Help(c tele.Context) error {
	return c.Send(helpMsg)
}

func (ctrl *Controller) Summary(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	summary, err := ctrl.portfolioService.PortfolioSummary(ctx, true)
	if err != nil {
		return ctrl.fail(ctx, c, "PortfolioSummary", err)
	}

	text, markup := telebotConverter.SummaryResponse(summary, ctrl.cfg.Report.Currency)
	return c.Send(text, markup)
}

// RefreshSummary answers the refresh button by editing the summary in place.
func (ctrl *Controller) RefreshSummary(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	summary, err := ctrl.portfolioService.PortfolioSummary(ctx, true)
	if err != nil {
		return ctrl.fail(ctx, c, "PortfolioSummary", err)
	}

	text, markup := telebotConverter.SummaryResponse(summary, ctrl.cfg.Report.Currency)
	err = c.Edit(text, markup)
	if errors.Is(err, tele.ErrSameMessageContent) {
		return c.Respond(&tele.CallbackResponse{Text: "nothing changed"})
	}
	return err
}

func (ctrl *Controller) Holdings(c tele.Context) error {
	return ctrl.holdingsPage(c, 0, false)
}

func (ctrl *Controller) HoldingsPage(c tele.Context) error {
	page, err := strconv.Atoi(c.Callback().Data)
	if err != nil {
		page = 0
	}
	return ctrl.holdingsPage(c, page, true)
}

func (ctrl *Controller) holdingsPage(c tele.Context, page int, edit bool) error {
	ctx := utils.CreateCtxWithRqID(c)

	holdings, err := ctrl.portfolioService.Holdings(ctx, true)
	if err != nil {
		return ctrl.fail(ctx, c, "Holdings", err)
	}

	text, markup := telebotConverter.HoldingsResponse(holdings, page, ctrl.cfg.Telegram.HoldingsPerPage, ctrl.cfg.Report.Currency)
	if edit {
		return c.Edit(text, markup)
	}
	return c.Send(text, markup)
}

func (ctrl *Controller) Stock(c tele.Context) error {
	code := strings.TrimSpace(c.Message().Payload)
	if code == "" {
		return c.Send("Usage: /stock <scrip code>")
	}
	return ctrl.stock(c, code)
}

func (ctrl *Controller) StockDetails(c tele.Context) error {
	return ctrl.stock(c, c.Callback().Data)
}

func (ctrl *Controller) stock(c tele.Context, code string) error {
	ctx := utils.CreateCtxWithRqID(c)

	summary, holding, err := ctrl.portfolioService.StockOverview(ctx, code, true)
	if err != nil {
		if errors.Is(err, accounting.ErrUnknownStock) || errors.Is(err, service.ErrNotFound) {
			return c.Send("No trades recorded for " + code)
		}
		return ctrl.fail(ctx, c, "StockOverview", err)
	}

	text, markup := telebotConverter.StockResponse(summary, holding, ctrl.cfg.Report.Currency)
	return c.Send(text, markup)
}

func (ctrl *Controller) Trades(c tele.Context) error {
	return ctrl.trades(c, strings.TrimSpace(c.Message().Payload))
}

func (ctrl *Controller) StockTrades(c tele.Context) error {
	return ctrl.trades(c, c.Callback().Data)
}

func (ctrl *Controller) trades(c tele.Context, code string) error {
	ctx := utils.CreateCtxWithRqID(c)

	trades, err := ctrl.portfolioService.TradeHistory(ctx, code, ctrl.cfg.Telegram.RecentTrades)
	if err != nil {
		return ctrl.fail(ctx, c, "TradeHistory", err)
	}

	return c.Send(telebotConverter.TradesResponse(trades, ctrl.cfg.Report.Currency))
}

func (ctrl *Controller) Alerts(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	rules, err := ctrl.portfolioService.ListAlertRules(ctx, strings.TrimSpace(c.Message().Payload), false)
	if err != nil {
		return ctrl.fail(ctx, c, "ListAlertRules", err)
	}

	return c.Send(telebotConverter.AlertRulesResponse(rules))
}

func (ctrl *Controller) fail(ctx context.Context, c tele.Context, call string, err error) error {
	slog.Error(
		"got error from portfolioService."+call,
		slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
		slog.String("err", err.Error()),
	)
	return c.Send(internalErrMsg)
}
