package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/stahnma/gh-shelf/internal/history"
	"github.com/stahnma/gh-shelf/internal/preload"
)

func (a *App) newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show how your repository lists changed between preloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.History == nil {
				return errors.New("history database is not available")
			}
			ctx := cmd.Context()
			user, _ := cmd.Flags().GetString("user")
			showRepos, _ := cmd.Flags().GetBool("repos")
			identity, err := a.identity(ctx, user)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if showRepos {
				seen, err := a.History.Repositories(ctx, identity)
				if err != nil {
					return fmt.Errorf("reading history: %w", err)
				}
				for _, s := range seen {
					fmt.Fprintf(w, "%-40s first %s  last %s  ★%d\n", s.Repository, s.FirstSeen, s.LastSeen, s.Stars)
				}
				return nil
			}

			totals, err := a.History.Totals(ctx, identity)
			if err != nil {
				return fmt.Errorf("reading history: %w", err)
			}
			for _, t := range totals {
				fmt.Fprintf(w, "%s  repos %-5d starred %-5d stars %d\n", t.Date, t.Repos, t.Starred, t.Stars)
			}
			return nil
		},
	}
	cmd.Flags().StringP("user", "u", "", "Identity whose history to show")
	cmd.Flags().Bool("repos", false, "List repositories with the dates they were first and last seen")

	cmd.AddCommand(&cobra.Command{
		Use:   "import <dir>",
		Short: "Import export documents into the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.History == nil {
				return errors.New("history database is not available")
			}
			n, err := a.History.ImportDir(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.record("Imported %d snapshots from %s", n, args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d snapshots.\n", n)
			return nil
		},
	})
	return cmd
}

// snapshot records a finished preload in the history database.
func (a *App) snapshot(ctx context.Context, res preload.Result) {
	if a.History == nil {
		return
	}
	err := a.History.Record(ctx, history.Snapshot{
		Identity: res.Identity,
		Date:     time.Now().Format(history.DateLayout),
		Repos:    res.Repos,
		Starred:  res.Starred,
	})
	if err != nil {
		a.Logger.Warn("failed to record history", slog.String("identity", res.Identity), slog.Any("error", err))
	}
}
