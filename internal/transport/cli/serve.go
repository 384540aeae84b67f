package cli

import (
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/spf13/cobra"
)

func (a *App) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the price and export jobs, the Telegram bot and the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.deps.Serve(utils.NewCtxWithRqID(cmd.Context()))
		},
	}
}
