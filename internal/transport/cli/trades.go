package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/importer"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/render"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/spf13/cobra"
)

func (a *App) tradeCmd() *cobra.Command {
	tradeCmd := &cobra.Command{
		Use:   "trade",
		Short: "Record and list trades",
	}

	var (
		date, price, brokerage, name, notes string
	)
	addCmd := &cobra.Command{
		Use:   "add <BUY|SELL> <code> <quantity>",
		Short: "Append a trade to the ledger",
		Example: `  portfolio_tracker trade add BUY 500325 10 --price 1450.50 --date 2024-01-15 --brokerage 20
  portfolio_tracker trade add SELL 500325 5 --price 1600`,
		Args: cobra.ExactArgs(3),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error {
			trade, err := buildTrade(args, date, price, brokerage)
			if err != nil {
				return err
			}
			trade.StockName = name
			trade.Notes = notes

			id, err := svc.RecordTrade(ctx, trade)
			if err != nil {
				return err
			}
			a.printf(cmd, "trade #%d recorded: %s %d %s @ %s\n", id, trade.Direction, trade.Quantity, trade.StockCode, trade.Price)
			return nil
		}),
	}
	addCmd.Flags().StringVarP(&date, "date", "d", "", "trade date YYYY-MM-DD (default today)")
	addCmd.Flags().StringVarP(&price, "price", "p", "", "price per share")
	addCmd.Flags().StringVarP(&brokerage, "brokerage", "b", "0", "brokerage charges")
	addCmd.Flags().StringVarP(&name, "name", "n", "", "company name")
	addCmd.Flags().StringVar(&notes, "notes", "", "free text")
	_ = addCmd.MarkFlagRequired("price")

	var (
		code, from, to string
		limit          int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List trades, newest first",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, _ []string) error {
			filter := model.TradeFilter{StockCode: code, Limit: limit, Newest: true}
			var err error
			if filter.From, err = optionalDate(from); err != nil {
				return err
			}
			if filter.To, err = optionalDate(to); err != nil {
				return err
			}

			trades, err := svc.ListTrades(ctx, filter)
			if err != nil {
				return err
			}
			return a.print(cmd, render.TradesMarkdown(trades, a.cfg.Report.Currency))
		}),
	}
	listCmd.Flags().StringVarP(&code, "code", "c", "", "only this scrip code")
	listCmd.Flags().StringVar(&from, "from", "", "from date YYYY-MM-DD")
	listCmd.Flags().StringVar(&to, "to", "", "to date YYYY-MM-DD")
	listCmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum rows, 0 for all")

	tradeCmd.AddCommand(addCmd, listCmd)
	return tradeCmd
}

func buildTrade(args []string, date, price, brokerage string) (model.TradeEvent, error) {
	var quantity int64
	if _, err := fmt.Sscan(args[2], &quantity); err != nil {
		return model.TradeEvent{}, fmt.Errorf("invalid quantity %q", args[2])
	}

	on, err := parseDate(date)
	if err != nil {
		return model.TradeEvent{}, err
	}
	p, err := parseDecimal("price", price)
	if err != nil {
		return model.TradeEvent{}, err
	}
	b, err := parseDecimal("brokerage", brokerage)
	if err != nil {
		return model.TradeEvent{}, err
	}

	return model.TradeEvent{
		StockCode: args[1],
		Date:      on,
		Direction: model.Direction(strings.ToUpper(args[0])),
		Quantity:  quantity,
		Price:     p,
		Brokerage: b,
	}, nil
}

func (a *App) importCmd() *cobra.Command {
	var (
		dryRun   bool
		template string
	)

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import trades from a CSV or XLSX file",
		Long: `Import trades from a CSV or XLSX file.

Required columns: trade_date, scrip_code, quantity, price, trade_type.
Optional columns: scrip_name, brokerage, notes. Common broker headings
such as "Date", "Symbol", "Qty", "Rate" and "Buy/Sell" are recognised.
Every row is parsed and validated before anything is written. Trades are
then recorded oldest first in one transaction, so a trade the ledger
rejects (for example a SELL larger than the holding) leaves the ledger
untouched.`,
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if template != "" {
				return writeTemplate(template)
			}
			if len(args) == 0 {
				return fmt.Errorf("file is required unless --template is set")
			}

			rows, err := importer.ReadFile(args[0])
			if err != nil {
				return err
			}

			if dryRun {
				res, err := importer.New(a.deps.OpenDryRun()).Import(utils.NewCtxWithRqID(cmd.Context()), rows)
				if err != nil {
					return fmt.Errorf("dry run failed: %w", err)
				}
				a.printf(cmd, "dry run: %d trades would be imported\n", res.Imported)
				return nil
			}

			return a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, _ []string) error {
				res, err := importer.New(svc).Import(ctx, rows)
				if err != nil {
					return fmt.Errorf("import rolled back, nothing was recorded: %w", err)
				}
				a.printf(cmd, "imported %d trades\n", res.Imported)
				return nil
			})(cmd, args)
		},
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "replay the file in memory without touching the database")
	importCmd.Flags().StringVar(&template, "template", "", "write a sample xlsx template to this path and exit")

	return importCmd
}

func writeTemplate(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = importer.WriteTemplate(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
