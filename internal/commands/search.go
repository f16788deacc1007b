package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stahnma/gh-shelf/internal/format"
	"github.com/stahnma/gh-shelf/internal/model"
	"github.com/stahnma/gh-shelf/internal/search"
)

type searchResults struct {
	Local  []model.Repository `json:"local"`
	GitHub []model.Repository `json:"github"`
}

func (a *App) newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search your cached repositories and all of GitHub",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd, strings.Join(args, " "))
		},
	}
	cmd.Flags().Bool("local-only", false, "Only search the local cache")
	cmd.Flags().Bool("json", false, "Write JSON instead of text")
	return cmd
}

func (a *App) runSearch(cmd *cobra.Command, text string) error {
	ctx := cmd.Context()
	localOnly, _ := cmd.Flags().GetBool("local-only")
	asJSON, _ := cmd.Flags().GetBool("json")

	if err := a.ensureClient(); err != nil {
		return err
	}

	var res searchResults
	if identity, err := a.identity(ctx, ""); err == nil {
		res.Local = search.Filter(a.Preloader.Repos(identity), text, search.FieldAll)
	} else {
		a.Logger.Warn("skipping local search", slog.Any("error", err))
		res.Local = []model.Repository{}
	}
	if !localOnly {
		res.GitHub = a.Searcher.Search(ctx, text)
	}
	if res.GitHub == nil {
		res.GitHub = []model.Repository{}
	}

	w := cmd.OutOrStdout()
	if asJSON {
		return format.WriteJSON(w, res)
	}
	fmt.Fprintln(w, "Local results:")
	if err := format.WriteRepos(w, res.Local, text); err != nil {
		return err
	}
	if localOnly {
		return nil
	}
	fmt.Fprintln(w, "\nGitHub results:")
	return format.WriteRepos(w, res.GitHub, text)
}
