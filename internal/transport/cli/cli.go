// Package cli is the command line surface of the tracker.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/render"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

type Service interface {
	RecordTrade(ctx context.Context, trade model.TradeEvent) (int64, error)
	ImportTrades(ctx context.Context, trades []model.TradeEvent) ([]int64, error)
	ListTrades(ctx context.Context, filter model.TradeFilter) ([]model.TradeEvent, error)

	RecordDividend(ctx context.Context, code string, date time.Time, amountPerShare decimal.Decimal, notes string) (int64, error)
	RecordBonus(ctx context.Context, code string, date time.Time, ratio model.Ratio, notes string) (int64, error)
	RecordSplit(ctx context.Context, code string, date time.Time, ratio model.Ratio, notes string) (int64, error)
	ListActions(ctx context.Context, filter model.ActionFilter) ([]model.CorporateAction, error)

	RebuildAll(ctx context.Context) (map[string]model.Position, error)
	Holdings(ctx context.Context, live bool) ([]model.Holding, error)
	PortfolioSummary(ctx context.Context, live bool) (model.PortfolioSummary, error)
	StockOverview(ctx context.Context, code string, live bool) (model.StockSummary, model.Holding, error)
	TotalRealizedPnL(ctx context.Context, asOf *time.Time) (decimal.Decimal, map[string]decimal.Decimal, error)
	ExportReport(ctx context.Context, upload bool) (path, link string, err error)

	AddAlertRule(ctx context.Context, rule model.AlertRule) (int64, error)
	ListAlertRules(ctx context.Context, code string, onlyActive bool) ([]model.AlertRule, error)
	DeactivateAlertRule(ctx context.Context, id int64) error
	DeleteAlertRule(ctx context.Context, id int64) error
	AlertHistory(ctx context.Context, code string, limit int) ([]model.AlertEvent, error)

	RefreshPrices(ctx context.Context) (int, error)
	UpdatePrice(ctx context.Context, code string) (model.Quote, error)
	PriceHistory(ctx context.Context, code string, limit int) ([]model.PriceBar, error)
	DeactivateStock(ctx context.Context, code string) error
	ActivateStock(ctx context.Context, code string) error
}

// Deps opens the backing stores on demand, so help and template commands need no database.
type Deps struct {
	// Open returns the service and a func releasing its connections.
	Open func(ctx context.Context) (Service, func(), error)
	// OpenDryRun returns a service over an empty in-memory store.
	OpenDryRun func() Service
	// Serve runs the long-lived jobs, bot and HTTP API until ctx is done.
	Serve func(ctx context.Context) error
}

type App struct {
	cfg   *config.Config
	deps  Deps
	plain bool
}

func NewRootCmd(cfg *config.Config, deps Deps) *cobra.Command {
	a := &App{cfg: cfg, deps: deps}

	rootCmd := &cobra.Command{
		Use:           "portfolio_tracker",
		Short:         "BSE portfolio tracker",
		Long:          "Keeps a ledger of BSE trades and corporate actions and reports holdings, P&L and alerts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&a.plain, "plain", false, "print raw markdown instead of styled output")

	rootCmd.AddCommand(
		a.tradeCmd(),
		a.actionCmd(),
		a.rebuildCmd(),
		a.holdingsCmd(),
		a.summaryCmd(),
		a.stockCmd(),
		a.realizedCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.alertCmd(),
		a.pricesCmd(),
		a.stockDeactivateCmd(),
		a.stockActivateCmd(),
		a.serveCmd(),
	)

	return rootCmd
}

// run opens the service and hands the command a context carrying a fresh rqID.
func (a *App) run(fn func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := utils.NewCtxWithRqID(cmd.Context())

		svc, closeFn, err := a.deps.Open(ctx)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer closeFn()

		return fn(ctx, cmd, svc, args)
	}
}

func (a *App) print(cmd *cobra.Command, markdown string) error {
	if a.plain {
		_, err := fmt.Fprint(cmd.OutOrStdout(), markdown)
		return err
	}

	out, err := render.Terminal(markdown, a.cfg.Report.Style)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func (a *App) printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

// parseDate accepts YYYY-MM-DD and defaults to today.
func parseDate(v string) (time.Time, error) {
	if v == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", v)
	}
	return t, nil
}

func optionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := parseDate(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDecimal(name, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v), ",", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q", name, v)
	}
	return d, nil
}
