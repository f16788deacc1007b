package commands

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stahnma/gh-shelf/internal/cache"
	ghub "github.com/stahnma/gh-shelf/internal/github"
)

func (a *App) newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			description, _ := cmd.Flags().GetString("description")
			private, _ := cmd.Flags().GetBool("private")
			readme, _ := cmd.Flags().GetBool("readme")

			identity, err := a.identity(ctx, "")
			if err != nil {
				return err
			}
			repo, err := ghub.CreateRepository(ctx, a.GHClient, identity, ghub.NewRepository{
				Name:        args[0],
				Description: description,
				Private:     private,
				WithReadme:  readme,
			})
			if err != nil {
				if errors.Is(err, ghub.ErrRepositoryExists) {
					return fmt.Errorf("repository %q already exists", args[0])
				}
				a.record("Failed to create repository %s: %v", args[0], err)
				return err
			}
			a.invalidate(identity)
			a.record("Created repository %s", repo.FullName)
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", repo.FullName)
			return nil
		},
	}
	cmd.Flags().StringP("description", "d", "", "Repository description")
	cmd.Flags().BoolP("private", "p", false, "Make the repository private")
	cmd.Flags().Bool("readme", false, "Initialise the repository with a README")
	return cmd
}

func (a *App) newDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>...",
		Short: "Delete repositories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			yes, _ := cmd.Flags().GetBool("yes")

			identity, err := a.identity(ctx, "")
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd, fmt.Sprintf("Delete %s? This cannot be undone. [y/N] ", strings.Join(args, ", "))) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}

			deleted, err := ghub.DeleteRepositories(ctx, a.GHClient, a.Logger, identity, args)
			for _, name := range deleted {
				a.record("Deleted repository %s/%s", identity, name)
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s/%s\n", identity, name)
			}
			if len(deleted) > 0 {
				a.invalidate(identity)
			}
			return err
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// invalidate drops the cached repository list so the next listing refetches.
func (a *App) invalidate(identity string) {
	if err := a.Preloader.Forget(identity, cache.KindRepos); err != nil {
		a.Logger.Warn("failed to clear repository cache", slog.String("identity", identity), slog.Any("error", err))
	}
}
