package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stahnma/gh-shelf/internal/cache"
)

func (a *App) newClearCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clearcache",
		Short: "Clear the cached repository lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			reposOnly, _ := cmd.Flags().GetBool("repos")
			starredOnly, _ := cmd.Flags().GetBool("starred")

			identity, err := a.identity(cmd.Context(), user)
			if err != nil {
				return err
			}

			var kinds []cache.Kind
			if reposOnly {
				kinds = append(kinds, cache.KindRepos)
			}
			if starredOnly {
				kinds = append(kinds, cache.KindStarred)
			}
			if err := a.Preloader.Forget(identity, kinds...); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			a.record("Cleared cache for %s", identity)
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}
	cmd.Flags().StringP("user", "u", "", "Identity whose cache to clear")
	cmd.Flags().Bool("repos", false, "Only clear the repository list")
	cmd.Flags().Bool("starred", false, "Only clear the starred list")
	return cmd
}
