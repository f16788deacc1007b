package commands

import (
	"github.com/spf13/cobra"
	"github.com/stahnma/gh-shelf/internal/format"
	"github.com/stahnma/gh-shelf/internal/search"
)

func (a *App) newSummaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show your most recently active repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			limit, _ := cmd.Flags().GetInt("limit")
			identity, err := a.identity(cmd.Context(), user)
			if err != nil {
				return err
			}
			rows := search.Summarize(a.Preloader.Repos(identity), limit)
			return format.WriteSummary(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringP("user", "u", "", "Read the cache of this identity instead of the token's owner")
	cmd.Flags().IntP("limit", "n", search.DefaultSummarySize, "Number of repositories to show")
	return cmd
}
