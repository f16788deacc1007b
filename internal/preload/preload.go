// Package preload fetches an identity's repository and starred lists in the
// background, caches them, and announces the results through signals.
package preload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/stahnma/gh-shelf/internal/cache"
	"github.com/stahnma/gh-shelf/internal/events"
	"github.com/stahnma/gh-shelf/internal/github"
	"github.com/stahnma/gh-shelf/internal/model"
	"github.com/stahnma/gh-shelf/internal/search"
	"github.com/stahnma/gh-shelf/internal/worker"
)

// Progress reports how many repositories have been fetched so far. Total is
// the best known total, which equals Current while pages are still arriving.
type Progress struct {
	Current int
	Total   int
}

// Result is everything one preload produced.
type Result struct {
	Identity string
	Repos    []model.Repository
	Starred  []model.Repository
	Summary  []model.Summary
	Err      error
}

// Preloader fetches and caches repository lists per identity.
type Preloader struct {
	Client  github.Client
	Store   *cache.Store
	Logger  *slog.Logger
	PerPage int

	Progress         events.Signal[Progress]
	Completed        events.Signal[[]model.Repository]
	StarredLoaded    events.Signal[[]model.Repository]
	SummaryCompleted events.Signal[[]model.Summary]
	Finished         events.Signal[Result]

	mu      sync.Mutex
	repos   map[string][]model.Repository
	starred map[string][]model.Repository
}

// New creates a Preloader.
func New(client github.Client, store *cache.Store, logger *slog.Logger, perPage int) *Preloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preloader{
		Client:  client,
		Store:   store,
		Logger:  logger,
		PerPage: perPage,
		repos:   make(map[string][]model.Repository),
		starred: make(map[string][]model.Repository),
	}
}

// Preload fetches every repository and every starred repository for the
// token's user, stores both under identity, and emits Completed,
// StarredLoaded, Progress and SummaryCompleted in that order. Fetch failures
// truncate the lists silently. The only error returned is a cache write
// failure, in which case the fetched lists are still returned.
func (p *Preloader) Preload(ctx context.Context, identity string) (Result, error) {
	p.Logger.Info("preloading repositories", slog.String("identity", identity))

	repos := github.ListUserRepos(ctx, p.Client, p.Logger, p.PerPage, func(total int) {
		p.Progress.Emit(Progress{Current: total, Total: total})
	})
	starred := github.ListStarred(ctx, p.Client, p.Logger, p.PerPage, nil)

	p.Logger.Info("preload complete",
		slog.String("identity", identity),
		slog.Int("repos", len(repos)),
		slog.Int("starred", len(starred)),
	)

	p.mu.Lock()
	p.repos[identity] = repos
	p.starred[identity] = starred
	p.mu.Unlock()

	var errs []error
	if err := p.Store.Put(identity, cache.KindRepos, repos); err != nil {
		errs = append(errs, err)
	}
	if err := p.Store.Put(identity, cache.KindStarred, starred); err != nil {
		errs = append(errs, err)
	}
	err := errors.Join(errs...)
	if err != nil {
		p.Logger.Error("failed to save cache", slog.String("identity", identity), slog.Any("error", err))
		err = fmt.Errorf("saving cache for %s: %w", identity, err)
	}

	p.Completed.Emit(repos)
	p.StarredLoaded.Emit(starred)
	p.Progress.Emit(Progress{Current: len(repos), Total: len(repos)})

	summary := search.Summarize(repos, search.DefaultSummarySize)
	p.SummaryCompleted.Emit(summary)

	return Result{
		Identity: identity,
		Repos:    repos,
		Starred:  starred,
		Summary:  summary,
		Err:      err,
	}, err
}

// ErrPanicked is the Result error of a preload that panicked.
var ErrPanicked = errors.New("preload panicked")

// Start submits a preload to q and returns immediately. The result is
// delivered through Finished, which fires even if the preload panics.
func (p *Preloader) Start(q *worker.Queue, identity string) error {
	return q.Submit("preload "+identity, func(ctx context.Context) {
		res := Result{Identity: identity}
		defer func() {
			if r := recover(); r != nil {
				p.Logger.Error("preload panicked", slog.String("identity", identity), slog.Any("panic", r))
				res = Result{Identity: identity, Err: fmt.Errorf("%w: %v", ErrPanicked, r)}
			}
			p.Finished.Emit(res)
		}()
		res, _ = p.Preload(ctx, identity)
	})
}

// Repos returns the preloaded repositories for identity, falling back to the
// cache file. An unknown identity yields an empty list.
func (p *Preloader) Repos(identity string) []model.Repository {
	return p.lookup(identity, cache.KindRepos, p.repos)
}

// Starred returns the preloaded starred repositories for identity, falling
// back to the cache file.
func (p *Preloader) Starred(identity string) []model.Repository {
	return p.lookup(identity, cache.KindStarred, p.starred)
}

func (p *Preloader) lookup(identity string, kind cache.Kind, loaded map[string][]model.Repository) []model.Repository {
	p.mu.Lock()
	defer p.mu.Unlock()
	if repos, ok := loaded[identity]; ok {
		return repos
	}
	entry, ok := p.Store.Load(identity, kind)
	if !ok {
		return []model.Repository{}
	}
	loaded[identity] = entry.Repos
	return entry.Repos
}

// Forget drops identity's in-memory lists and cache files.
func (p *Preloader) Forget(identity string, kinds ...cache.Kind) error {
	if len(kinds) == 0 {
		kinds = cache.Kinds
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for _, kind := range kinds {
		switch kind {
		case cache.KindRepos:
			delete(p.repos, identity)
		case cache.KindStarred:
			delete(p.starred, identity)
		}
		errs = append(errs, p.Store.Clear(identity, kind))
	}
	return errors.Join(errs...)
}
