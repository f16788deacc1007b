package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) newLogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wipe, _ := cmd.Flags().GetBool("clear"); wipe {
				if err := a.Journal.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Activity log cleared.")
				return nil
			}
			entries, err := a.Journal.Entries()
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
	cmd.Flags().Bool("clear", false, "Empty the activity log")
	return cmd
}
