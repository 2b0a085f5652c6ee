package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run task sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.repo.Sync(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Synchronized.")
			return nil
		},
	}
}
