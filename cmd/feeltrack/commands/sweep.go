package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewSweepCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one supportive notification sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			defer a.Logger.Sync()

			res, err := a.Scheduler.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "candidates=%d created=%d skipped=%d failed=%d\n",
				res.Candidates, res.Created, res.Skipped, res.Failed)
			return nil
		},
	}
}
