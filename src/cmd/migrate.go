package cmd

import (
	"fmt"

	"github.com/veesr/escrow/src/utils/model"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Applies database migrations of the postgres ledger",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		direction := migrate.Up
		if len(args) == 1 && args[0] == "down" {
			direction = migrate.Down
		}

		n, err := model.MigrateDirection(applicationCtx, conf, direction)
		if err != nil {
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", n)
		return
	},
}
