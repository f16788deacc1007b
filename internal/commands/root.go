package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stahnma/gh-shelf/internal/activity"
	"github.com/stahnma/gh-shelf/internal/cache"
	"github.com/stahnma/gh-shelf/internal/config"
	ghub "github.com/stahnma/gh-shelf/internal/github"
	"github.com/stahnma/gh-shelf/internal/history"
	"github.com/stahnma/gh-shelf/internal/preload"
	"github.com/stahnma/gh-shelf/internal/tokens"
	"github.com/stahnma/gh-shelf/internal/worker"
)

// App holds shared application state.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	GHClient  ghub.Client
	Store     *cache.Store
	Preloader *preload.Preloader
	Searcher  *ghub.Searcher
	Tokens    *tokens.Store
	Journal   *activity.Journal
	History   *history.DB
	Queue     *worker.Queue
	GitSHA    string
	GitDirty  string

	newClient func(token, apiURL string) (ghub.Client, error)
	token     string
	login     string
}

// NewApp creates a new App from the given configuration.
func NewApp(cfg config.Config, logger *slog.Logger, gitSHA, gitDirty string) (*App, error) {
	tokenStore, err := tokens.Open(cfg.TokenDir(), logger)
	if err != nil {
		return nil, fmt.Errorf("loading tokens: %w", err)
	}
	store := cache.New(cfg.CacheDir(), logger)
	hist, err := history.Open(cfg.HistoryFile())
	if err != nil {
		return nil, err
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Preloader: preload.New(nil, store, logger, cfg.PerPage),
		Tokens:    tokenStore,
		Journal:   activity.NewJournal(cfg.LogFile()),
		History:   hist,
		Queue:     worker.New(logger, 4),
		GitSHA:    gitSHA,
		GitDirty:  gitDirty,
	}, nil
}

// Close stops the background worker and closes the history database.
func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			a.Logger.Warn("failed to close history", slog.Any("error", err))
		}
	}
}

// resolveToken picks the configured token, then the remembered one, then the
// most recently added one.
func (a *App) resolveToken() (string, error) {
	if a.token != "" {
		return a.token, nil
	}
	if a.Config.GitHubToken != "" {
		return a.Config.GitHubToken, nil
	}
	if a.Tokens != nil {
		if t, ok := a.Tokens.Recall(); ok {
			return t, nil
		}
		if t, ok := a.Tokens.Last(); ok {
			return t, nil
		}
	}
	return "", errors.New("no GitHub token: set GITHUB_TOKEN or run 'token add'")
}

// ensureClient creates the GitHub client and the components that need it.
func (a *App) ensureClient() error {
	if a.GHClient == nil {
		token, err := a.resolveToken()
		if err != nil {
			return err
		}
		newClient := a.newClient
		if newClient == nil {
			newClient = ghub.NewClient
		}
		client, err := newClient(token, a.Config.APIURL)
		if err != nil {
			return err
		}
		a.GHClient = client
		a.token = token
	}
	if a.Searcher == nil {
		a.Searcher = ghub.NewSearcher(a.GHClient, a.Logger)
		a.Searcher.NoCache = a.Config.NoCache
	}
	if a.Preloader == nil {
		a.Preloader = preload.New(a.GHClient, a.Store, a.Logger, a.Config.PerPage)
	}
	if a.Preloader.Client == nil {
		a.Preloader.Client = a.GHClient
	}
	return nil
}

// useToken discards the current client so the next ensureClient
// authenticates with token.
func (a *App) useToken(token string) {
	a.token = strings.TrimSpace(token)
	a.login = ""
	a.GHClient = nil
	a.Searcher = nil
	if a.Preloader != nil {
		a.Preloader.Client = nil
	}
}

// identity returns user when set, otherwise the login of the token's owner.
func (a *App) identity(ctx context.Context, user string) (string, error) {
	if user != "" {
		if err := cache.ValidIdentity(user); err != nil {
			return "", err
		}
		return user, nil
	}
	if a.login != "" {
		return a.login, nil
	}
	if err := a.ensureClient(); err != nil {
		return "", err
	}
	login, err := ghub.Whoami(ctx, a.GHClient)
	if err != nil {
		return "", err
	}
	a.login = login
	return login, nil
}

// record adds msg to the activity journal.
func (a *App) record(format string, args ...any) {
	if a.Journal == nil {
		return
	}
	if err := a.Journal.Addf(format, args...); err != nil {
		a.Logger.Warn("failed to write activity log", slog.Any("error", err))
	}
}

// NewRootCommand creates the root cobra command with all subcommands.
func (a *App) NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   os.Args[0],
		Short: "Browse, search and manage your GitHub repositories.",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().BoolVar(&a.Config.NoCache, "no-cache", a.Config.NoCache, "Disable the search result cache")

	rootCmd.AddCommand(a.newLoginCommand())
	rootCmd.AddCommand(a.newTokenCommand())
	rootCmd.AddCommand(a.newPreloadCommand())
	rootCmd.AddCommand(a.newReposCommand())
	rootCmd.AddCommand(a.newStarredCommand())
	rootCmd.AddCommand(a.newSearchCommand())
	rootCmd.AddCommand(a.newSummaryCommand())
	rootCmd.AddCommand(a.newCreateCommand())
	rootCmd.AddCommand(a.newDeleteCommand())
	rootCmd.AddCommand(a.newUploadCommand())
	rootCmd.AddCommand(a.newCloneCommand())
	rootCmd.AddCommand(a.newClearCacheCommand())
	rootCmd.AddCommand(a.newLogCommand())
	rootCmd.AddCommand(a.newExportCommand())
	rootCmd.AddCommand(a.newHistoryCommand())
	rootCmd.AddCommand(a.newVersionCommand())

	return rootCmd
}
