package cli

import (
	"context"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/render"
	"github.com/spf13/cobra"
)

func (a *App) actionCmd() *cobra.Command {
	actionCmd := &cobra.Command{
		Use:   "action",
		Short: "Record corporate actions",
	}

	var date, notes string
	addFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&date, "date", "d", "", "ex-date YYYY-MM-DD (default today)")
		cmd.Flags().StringVar(&notes, "notes", "", "free text")
	}

	dividendCmd := &cobra.Command{
		Use:     "dividend <code> <amount per share>",
		Short:   "Record a cash dividend",
		Example: "  portfolio_tracker action dividend 500325 9 --date 2024-08-19",
		Args:    cobra.ExactArgs(2),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error {
			on, err := parseDate(date)
			if err != nil {
				return err
			}
			amount, err := parseDecimal("amount", args[1])
			if err != nil {
				return err
			}
			id, err := svc.RecordDividend(ctx, args[0], on, amount, notes)
			if err != nil {
				return err
			}
			a.printf(cmd, "dividend #%d recorded: %s %s per share\n", id, args[0], amount)
			return nil
		}),
	}
	addFlags(dividendCmd)

	bonusCmd := &cobra.Command{
		Use:     "bonus <code> <new:held>",
		Short:   "Record a bonus issue, e.g. 1:1 gives one new share per share held",
		Example: "  portfolio_tracker action bonus 500325 1:1 --date 2024-10-28",
		Args:    cobra.ExactArgs(2),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error {
			on, err := parseDate(date)
			if err != nil {
				return err
			}
			ratio, err := accounting.ParseBonusRatio(args[1])
			if err != nil {
				return err
			}
			id, err := svc.RecordBonus(ctx, args[0], on, ratio, notes)
			if err != nil {
				return err
			}
			a.printf(cmd, "bonus #%d recorded: %s %s\n", id, args[0], args[1])
			return nil
		}),
	}
	addFlags(bonusCmd)

	splitCmd := &cobra.Command{
		Use:     "split <code> <old:new>",
		Short:   "Record a split or consolidation, e.g. 1:2 turns one share into two",
		Example: "  portfolio_tracker action split 500325 1:2 --date 2024-03-01",
		Args:    cobra.ExactArgs(2),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error {
			on, err := parseDate(date)
			if err != nil {
				return err
			}
			ratio, err := accounting.ParseSplitRatio(args[1])
			if err != nil {
				return err
			}
			id, err := svc.RecordSplit(ctx, args[0], on, ratio, notes)
			if err != nil {
				return err
			}
			a.printf(cmd, "split #%d recorded: %s %s\n", id, args[0], args[1])
			return nil
		}),
	}
	addFlags(splitCmd)

	var code, kind string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List corporate actions",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, _ []string) error {
			actions, err := svc.ListActions(ctx, model.ActionFilter{StockCode: code, Kind: model.ActionKind(strings.ToUpper(kind))})
			if err != nil {
				return err
			}
			return a.print(cmd, render.ActionsMarkdown(actions, a.cfg.Report.Currency))
		}),
	}
	listCmd.Flags().StringVarP(&code, "code", "c", "", "only this scrip code")
	listCmd.Flags().StringVarP(&kind, "kind", "k", "", "DIVIDEND, BONUS or SPLIT")

	actionCmd.AddCommand(dividendCmd, bonusCmd, splitCmd, listCmd)
	return actionCmd
}
