package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stahnma/gh-shelf/internal/transfer"
)

func (a *App) newUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <repo> <path>",
		Short: "Upload a file or directory into one of your repositories",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			identity, err := a.identity(ctx, "")
			if err != nil {
				return err
			}
			owner, repo := splitRepo(args[0], identity)

			res, err := transfer.Upload(ctx, a.GHClient, a.Logger, owner, repo, args[1])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Uploaded %d files and %d directories to %s/%s\n", len(res.Files), len(res.Directories), owner, repo)
			if len(res.Skipped) > 0 {
				fmt.Fprintf(w, "Skipped: %s\n", strings.Join(res.Skipped, ", "))
			}
			if err := res.Err(); err != nil {
				a.record("Upload of %s to %s/%s finished with %d errors", args[1], owner, repo, len(res.Errors))
				return fmt.Errorf("some uploads failed: %w", err)
			}
			a.record("Uploaded %s to %s/%s", args[1], owner, repo)
			return nil
		},
	}
}

func (a *App) newCloneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone <repo|clone-url> [destination]",
		Short: "Download a repository's files without git history",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			overwrite, _ := cmd.Flags().GetBool("overwrite")
			dest := "."
			if len(args) == 2 {
				dest = args[1]
			}

			var owner, repo string
			if strings.Contains(args[0], "/") {
				var err error
				if owner, repo, err = transfer.ParseCloneURL(args[0]); err != nil {
					return err
				}
				if err := a.ensureClient(); err != nil {
					return err
				}
			} else {
				identity, err := a.identity(ctx, "")
				if err != nil {
					return err
				}
				owner, repo = identity, args[0]
			}

			target, err := transfer.Download(ctx, a.GHClient, owner, repo, dest, overwrite)
			if err != nil {
				if errors.Is(err, transfer.ErrDestinationExists) {
					return fmt.Errorf("%w; pass --overwrite to replace it", err)
				}
				a.record("Failed to download %s/%s: %v", owner, repo, err)
				return err
			}
			a.record("Downloaded %s/%s to %s", owner, repo, target)
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s/%s to %s\n", owner, repo, target)
			return nil
		},
	}
	cmd.Flags().Bool("overwrite", false, "Replace the destination directory if it exists")
	return cmd
}

// splitRepo accepts owner/repo or a bare name owned by identity.
func splitRepo(s, identity string) (owner, repo string) {
	if o, r, found := strings.Cut(s, "/"); found {
		return o, r
	}
	return identity, s
}
