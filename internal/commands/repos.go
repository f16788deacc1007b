package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stahnma/gh-shelf/internal/cache"
	"github.com/stahnma/gh-shelf/internal/format"
	"github.com/stahnma/gh-shelf/internal/model"
	"github.com/stahnma/gh-shelf/internal/search"
)

func (a *App) newReposCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos [flags]",
		Short: "List your repositories from the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, cache.KindRepos)
		},
	}
	addListFlags(cmd)
	return cmd
}

func (a *App) newStarredCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "starred [flags]",
		Short: "List your starred repositories from the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, cache.KindStarred)
		},
	}
	addListFlags(cmd)
	return cmd
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("user", "u", "", "Read the cache of this identity instead of the token's owner")
	cmd.Flags().StringP("query", "q", "", "Only show repositories matching this text")
	cmd.Flags().String("field", "all", "Field to match: all, name, description or language")
	cmd.Flags().BoolP("refresh", "r", false, "Fetch from GitHub before listing")
	cmd.Flags().Bool("json", false, "Write JSON instead of text")
}

func (a *App) runList(cmd *cobra.Command, kind cache.Kind) error {
	ctx := cmd.Context()
	user, _ := cmd.Flags().GetString("user")
	query, _ := cmd.Flags().GetString("query")
	fieldName, _ := cmd.Flags().GetString("field")
	refresh, _ := cmd.Flags().GetBool("refresh")
	asJSON, _ := cmd.Flags().GetBool("json")

	field, err := search.ParseField(fieldName)
	if err != nil {
		return err
	}
	if refresh && user != "" {
		return fmt.Errorf("--refresh always fetches for the token's owner; drop --user")
	}

	identity, err := a.identity(ctx, user)
	if err != nil {
		return err
	}

	list := a.cached(identity, kind)
	if refresh || (len(list) == 0 && user == "") {
		if _, err := a.runPreload(cmd, identity); err != nil {
			return err
		}
		list = a.cached(identity, kind)
	}

	results := search.Filter(list, query, field)
	if asJSON {
		return format.WriteJSON(cmd.OutOrStdout(), results)
	}
	return format.WriteRepos(cmd.OutOrStdout(), results, query)
}

func (a *App) cached(identity string, kind cache.Kind) []model.Repository {
	if kind == cache.KindStarred {
		return a.Preloader.Starred(identity)
	}
	return a.Preloader.Repos(identity)
}
