package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"
	gocache "github.com/patrickmn/go-cache"
	"github.com/stahnma/gh-shelf/internal/model"
	"github.com/stahnma/gh-shelf/internal/search"
)

// exactQueries look for the text as a user, a repository, or a quoted phrase
// in the name, description or README.
var exactQueries = []string{
	"user:%s",
	"repo:%s",
	`"%s" in:name`,
	`"%s" in:description`,
	`"%s" in:readme`,
}

const partialQuery = "%s in:name,description,readme"

// Searcher runs remote repository searches and memoises the ranked results.
type Searcher struct {
	client  Client
	logger  *slog.Logger
	memo    *gocache.Cache
	NoCache bool
}

// NewSearcher creates a Searcher whose results are kept for five minutes.
func NewSearcher(client Client, logger *slog.Logger) *Searcher {
	return &Searcher{
		client: client,
		logger: logger,
		memo:   gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Search runs the exact queries followed by the partial query, removes
// duplicate ids and ranks the result with search.SortRanked. A failing query
// contributes no results. Empty text returns nil.
func (s *Searcher) Search(ctx context.Context, text string) []model.Repository {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	cacheKey := "search:" + strings.ToLower(text)
	if !s.NoCache {
		if val, found := s.memo.Get(cacheKey); found {
			s.logger.Debug("cache hit", slog.String("key", cacheKey))
			if repos, ok := val.([]model.Repository); ok {
				return repos
			}
		}
		s.logger.Debug("cache miss", slog.String("key", cacheKey))
	}

	var all []model.Repository
	for _, q := range exactQueries {
		all = append(all, s.fetch(ctx, fmt.Sprintf(q, text))...)
	}
	all = append(all, s.fetch(ctx, fmt.Sprintf(partialQuery, text))...)

	results := search.SortRanked(search.Dedup(all))
	if !s.NoCache {
		s.memo.Set(cacheKey, results, gocache.DefaultExpiration)
	}
	return results
}

func (s *Searcher) fetch(ctx context.Context, query string) []model.Repository {
	result, _, err := s.client.SearchRepositories(ctx, query, &gh.SearchOptions{Sort: "stars", Order: "desc"})
	if err != nil {
		s.logger.Warn("GitHub search failed", slog.String("query", query), slog.Any("error", err))
		return nil
	}
	return ToModels(result.Repositories)
}
