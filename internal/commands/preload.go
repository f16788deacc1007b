package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stahnma/gh-shelf/internal/format"
	"github.com/stahnma/gh-shelf/internal/preload"
)

func (a *App) newPreloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preload",
		Short: "Fetch and cache all repositories and starred repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureClient(); err != nil {
				return err
			}
			identity, err := a.identity(cmd.Context(), "")
			if err != nil {
				return err
			}
			res, err := a.runPreload(cmd, identity)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Most active repositories:")
			return format.WriteSummary(cmd.OutOrStdout(), res.Summary)
		},
	}
	return cmd
}

// runPreload hands the preload to the background worker and waits for it,
// reporting progress as pages arrive.
func (a *App) runPreload(cmd *cobra.Command, identity string) (preload.Result, error) {
	if err := a.ensureClient(); err != nil {
		return preload.Result{}, err
	}
	w := cmd.ErrOrStderr()

	stopProgress := a.Preloader.Progress.Connect(func(p preload.Progress) {
		fmt.Fprintf(w, "\rPreloading repositories... %d", p.Current)
	})
	defer stopProgress()

	done := make(chan preload.Result, 1)
	stopFinished := a.Preloader.Finished.Connect(func(r preload.Result) {
		if r.Identity != identity {
			return
		}
		select {
		case done <- r:
		default:
		}
	})
	defer stopFinished()

	if err := a.Preloader.Start(a.Queue, identity); err != nil {
		return preload.Result{}, err
	}

	select {
	case res := <-done:
		fmt.Fprintln(w)
		a.snapshot(cmd.Context(), res)
		a.record("Preloaded %d repositories and %d starred repositories for %s", len(res.Repos), len(res.Starred), identity)
		fmt.Fprintf(cmd.OutOrStdout(), "Cached %d repositories and %d starred repositories for %s\n", len(res.Repos), len(res.Starred), identity)
		return res, res.Err
	case <-cmd.Context().Done():
		return preload.Result{}, cmd.Context().Err()
	}
}
