package commands

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/stahnma/gh-shelf/internal/format"
	"github.com/stahnma/gh-shelf/internal/history"
	"github.com/stahnma/gh-shelf/internal/model"
	"github.com/stahnma/gh-shelf/internal/search"
)

// Export is the JSON document written by the export command.
type Export struct {
	Identity string             `json:"identity"`
	Date     string             `json:"date"`
	Repos    []model.Repository `json:"repos"`
	Starred  []model.Repository `json:"starred"`
	Summary  []model.Summary    `json:"summary"`
}

func (a *App) newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [flags]",
		Short: "Export the cached repository lists as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			identity, err := a.identity(cmd.Context(), user)
			if err != nil {
				return err
			}
			return a.ExportJSON(cmd.Context(), cmd.OutOrStdout(), identity)
		},
	}
	cmd.Flags().StringP("user", "u", "", "Identity whose cache to export")
	return cmd
}

// Refresh preloads the token owner's lists and returns the owner's login.
func (a *App) Refresh(ctx context.Context) (string, error) {
	identity, err := a.identity(ctx, "")
	if err != nil {
		return "", err
	}
	res, err := a.Preloader.Preload(ctx, identity)
	if err != nil {
		return "", err
	}
	a.snapshot(ctx, res)
	return identity, nil
}

// ExportJSON writes identity's cached lists and summary to w.
func (a *App) ExportJSON(_ context.Context, w io.Writer, identity string) error {
	repos := a.Preloader.Repos(identity)
	return format.WriteJSON(w, Export{
		Identity: identity,
		Date:     time.Now().Format(history.DateLayout),
		Repos:    repos,
		Starred:  a.Preloader.Starred(identity),
		Summary:  search.Summarize(repos, search.DefaultSummarySize),
	})
}
