package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	ghub "github.com/stahnma/gh-shelf/internal/github"
	"github.com/stahnma/gh-shelf/internal/tokens"
)

func (a *App) newLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [token]",
		Short: "Log in with a token and preload its repositories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := a.Tokens.Add(args[0]); err != nil && !errors.Is(err, tokens.ErrDuplicateToken) {
					return err
				}
				a.useToken(args[0])
			}
			if err := a.ensureClient(); err != nil {
				return err
			}

			login, err := ghub.Whoami(cmd.Context(), a.GHClient)
			if err != nil {
				a.record("Login failed: %v", err)
				return fmt.Errorf("logging in: %w", err)
			}
			a.login = login
			if a.token != "" {
				if err := a.Tokens.Remember(a.token); err != nil {
					a.Logger.Warn("failed to remember token", slog.Any("error", err))
				}
			}
			a.record("Logged in as %s", login)
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", login)

			skip, _ := cmd.Flags().GetBool("no-preload")
			if skip {
				return nil
			}
			_, err = a.runPreload(cmd, login)
			return err
		},
	}
	cmd.Flags().Bool("no-preload", false, "Do not fetch repositories after logging in")
	return cmd
}

func (a *App) newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage saved GitHub tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <token>",
		Short: "Save a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Tokens.Add(args[0]); err != nil {
				a.record("Rejected token: %v", err)
				return err
			}
			a.record("Added token %s", tokens.Mask(args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "Token added. %d tokens saved.\n", len(a.Tokens.List()))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			list := a.Tokens.List()
			fmt.Fprintf(w, "%d tokens saved\n", len(list))
			for i, t := range list {
				fmt.Fprintf(w, "%d: %s\n", i, tokens.Mask(t))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <index>",
		Short: "Remove a saved token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var index int
			if _, err := fmt.Sscanf(args[0], "%d", &index); err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			if err := a.Tokens.Remove(index); err != nil {
				return err
			}
			a.record("Removed token %d", index)
			fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
			return nil
		},
	})

	return cmd
}
