package cli

import (
	"context"

	"github.com/KotFed0t/portfolio_tracker/internal/render"
	"github.com/spf13/cobra"
)

func (a *App) rebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute every cached position from the ledger",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, _ []string) error {
			positions, err := svc.RebuildAll(ctx)
			if err != nil {
				return err
			}
			a.printf(cmd, "rebuilt %d positions\n", len(positions))
			return nil
		}),
	}
}

func (a *App) holdingsCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "holdings",
		Short: "Show open positions with current value and weight",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, _ []string) error {
			holdings, err := svc.Holdings(ctx, !offline)
			if err != nil {
				return err
			}
			return a.print(cmd, render.HoldingsMarkdown(holdings, a.cfg.Report.Currency))
		}),
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "use stored prices instead of fetching quotes")
	return cmd
}

func (a *App) summaryCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the portfolio dashboard",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, _ []string) error {
			summary, err := svc.PortfolioSummary(ctx, !offline)
			if err != nil {
				return err
			}
			return a.print(cmd, render.SummaryMarkdown(summary, a.cfg.Report.Currency))
		}),
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "use stored prices instead of fetching quotes")
	return cmd
}

func (a *App) stockCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "stock <code>",
		Short: "Show one stock with its FIFO lots and sales",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error {
			summary, holding, err := svc.StockOverview(ctx, args[0], !offline)
			if err != nil {
				return err
			}
			return a.print(cmd, render.StockMarkdown(summary, holding, a.cfg.Report.Currency))
		}),
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "use the stored price instead of fetching a quote")
	return cmd
}

func (a *App) realizedCmd() *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "realized",
		Short: "Show realized FIFO gains per stock",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, _ []string) error {
			date, err := optionalDate(asOf)
			if err != nil {
				return err
			}
			total, perStock, err := svc.TotalRealizedPnL(ctx, date)
			if err != nil {
				return err
			}
			return a.print(cmd, render.RealizedMarkdown(total, perStock, a.cfg.Report.Currency))
		}),
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "only sales up to this date YYYY-MM-DD")
	return cmd
}

func (a *App) exportCmd() *cobra.Command {
	var upload bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the xlsx report to the export directory",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, _ []string) error {
			path, link, err := svc.ExportReport(ctx, upload)
			if err != nil {
				return err
			}
			a.printf(cmd, "report written to %s\n", path)
			if link != "" {
				a.printf(cmd, "uploaded: %s\n", link)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&upload, "upload", false, "also upload to Google Drive")
	return cmd
}
