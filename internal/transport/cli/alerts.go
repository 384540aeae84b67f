package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/render"
	"github.com/spf13/cobra"
)

func (a *App) alertCmd() *cobra.Command {
	alertCmd := &cobra.Command{
		Use:   "alert",
		Short: "Manage price alerts",
	}

	var notes string
	addCmd := &cobra.Command{
		Use:   "add <code> <TARGET_PRICE|STOP_LOSS|PRICE_CHANGE> <ABOVE|BELOW|CHANGE_UP|CHANGE_DOWN> <threshold>",
		Short: "Add an alert rule",
		Example: `  portfolio_tracker alert add 500325 TARGET_PRICE ABOVE 3000
  portfolio_tracker alert add 500325 PRICE_CHANGE CHANGE_DOWN 5`,
		Args: cobra.ExactArgs(4),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error {
			threshold, err := parseDecimal("threshold", args[3])
			if err != nil {
				return err
			}
			id, err := svc.AddAlertRule(ctx, model.AlertRule{
				StockCode: args[0],
				Type:      model.AlertType(strings.ToUpper(args[1])),
				Condition: model.AlertCondition(strings.ToUpper(args[2])),
				Threshold: threshold,
				Notes:     notes,
			})
			if err != nil {
				return err
			}
			a.printf(cmd, "alert #%d added\n", id)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&notes, "notes", "", "free text")

	var (
		code       string
		onlyActive bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List alert rules",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, _ []string) error {
			rules, err := svc.ListAlertRules(ctx, code, onlyActive)
			if err != nil {
				return err
			}
			return a.print(cmd, render.AlertRulesMarkdown(rules))
		}),
	}
	listCmd.Flags().StringVarP(&code, "code", "c", "", "only this scrip code")
	listCmd.Flags().BoolVar(&onlyActive, "active", false, "only active rules")

	deactivateCmd := &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Stop an alert rule from firing",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err = svc.DeactivateAlertRule(ctx, id); err != nil {
				return err
			}
			a.printf(cmd, "alert #%d deactivated\n", id)
			return nil
		}),
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an alert rule and its history",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err = svc.DeleteAlertRule(ctx, id); err != nil {
				return err
			}
			a.printf(cmd, "alert #%d deleted\n", id)
			return nil
		}),
	}

	var (
		historyCode string
		limit       int
	)
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show triggered alerts, newest first",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc Service, _ []string) error {
			events, err := svc.AlertHistory(ctx, historyCode, limit)
			if err != nil {
				return err
			}
			return a.print(cmd, render.AlertHistoryMarkdown(events))
		}),
	}
	historyCmd.Flags().StringVarP(&historyCode, "code", "c", "", "only this scrip code")
	historyCmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum rows")

	alertCmd.AddCommand(addCmd, listCmd, deactivateCmd, deleteCmd, historyCmd)
	return alertCmd
}

func parseID(v string) (int64, error) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", v)
	}
	return id, nil
}
