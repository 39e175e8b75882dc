package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users, messages, follows and likes tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			rt.log.WithField("driver", rt.cfg.Database.Driver).Info("schema migrated")
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}
