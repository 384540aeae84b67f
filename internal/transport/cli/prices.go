package cli

import (
	"context"

	"github.com/KotFed0t/portfolio_tracker/internal/render"
	"github.com/spf13/cobra"
)

func (a *App) pricesCmd() *cobra.Command {
	pricesCmd := &cobra.Command{
		Use:   "prices",
		Short: "Fetch and inspect prices",
	}

	updateCmd := &cobra.Command{
		Use:   "update [code]",
		Short: "Fetch quotes now, for one stock or every active stock",
		Long:  "Fetch quotes now, ignoring market hours. Alert rules are evaluated against the new prices.",
		Args:  cobra.RangeArgs(0, 1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error {
			if len(args) == 1 {
				quote, err := svc.UpdatePrice(ctx, args[0])
				if err != nil {
					return err
				}
				a.printf(cmd, "%s %s\n", quote.StockCode, render.Price(quote.Price))
				return nil
			}

			updated, err := svc.RefreshPrices(ctx)
			if err != nil {
				return err
			}
			a.printf(cmd, "updated %d prices\n", updated)
			return nil
		}),
	}

	var limit int
	historyCmd := &cobra.Command{
		Use:   "history <code>",
		Short: "Show stored daily bars, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error {
			bars, err := svc.PriceHistory(ctx, args[0], limit)
			if err != nil {
				return err
			}
			return a.print(cmd, render.PriceHistoryMarkdown(args[0], bars))
		}),
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "l", 30, "maximum rows")

	pricesCmd.AddCommand(updateCmd, historyCmd)
	return pricesCmd
}

func (a *App) stockDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stock-deactivate <code>",
		Short: "Stop fetching prices for a stock",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error {
			if err := svc.DeactivateStock(ctx, args[0]); err != nil {
				return err
			}
			a.printf(cmd, "%s deactivated\n", args[0])
			return nil
		}),
	}
}

func (a *App) stockActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stock-activate <code>",
		Short: "Resume fetching prices for a stock",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error {
			if err := svc.ActivateStock(ctx, args[0]); err != nil {
				return err
			}
			a.printf(cmd, "%s activated\n", args[0])
			return nil
		}),
	}
}
