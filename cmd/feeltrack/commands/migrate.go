package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"feeltrack/internal/db"
	pkgdb "feeltrack/pkg/db"
)

func NewMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			pool, err := pkgdb.NewConnection(cfg.DB, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(cmd.Context(), pool, log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
