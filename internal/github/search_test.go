package github

import (
	"context"
	"errors"
	"strings"
	"testing"

	gh "github.com/google/go-github/v68/github"
	"github.com/stahnma/gh-shelf/internal/logging"
)

func rankedRepo(id int64, name string, stars int) *gh.Repository {
	r := makeRepo(id, name)
	r.StargazersCount = gh.Ptr(stars)
	r.WatchersCount = gh.Ptr(0)
	r.UpdatedAt = &gh.Timestamp{}
	return r
}

func TestSearch_RunsAllQueries(t *testing.T) {
	var queries []string
	client := &mockClient{
		searchReposFn: func(_ context.Context, query string, opts *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error) {
			queries = append(queries, query)
			if opts.Sort != "stars" || opts.Order != "desc" {
				t.Errorf("unexpected search options %+v", opts)
			}
			return &gh.RepositoriesSearchResult{}, okResponse(), nil
		},
	}

	NewSearcher(client, logging.Discard()).Search(context.Background(), "shelf")

	want := []string{
		"user:shelf",
		"repo:shelf",
		`"shelf" in:name`,
		`"shelf" in:description`,
		`"shelf" in:readme`,
		"shelf in:name,description,readme",
	}
	if strings.Join(queries, "|") != strings.Join(want, "|") {
		t.Errorf("queries = %q, want %q", queries, want)
	}
}

func TestSearch_DedupAndRank(t *testing.T) {
	client := &mockClient{
		searchReposFn: func(_ context.Context, query string, _ *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error) {
			switch {
			case strings.HasPrefix(query, `"shelf" in:name`):
				return &gh.RepositoriesSearchResult{Repositories: []*gh.Repository{
					rankedRepo(1, "a/popular", 100),
					rankedRepo(2, "b/niche", 3),
				}}, okResponse(), nil
			case strings.HasSuffix(query, "in:name,description,readme"):
				return &gh.RepositoriesSearchResult{Repositories: []*gh.Repository{
					rankedRepo(2, "b/niche", 3),
					rankedRepo(3, "c/middle", 40),
				}}, okResponse(), nil
			}
			return &gh.RepositoriesSearchResult{}, okResponse(), nil
		},
	}

	got := NewSearcher(client, logging.Discard()).Search(context.Background(), "shelf")
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3 after dedup", len(got))
	}
	order := []int64{got[0].ID, got[1].ID, got[2].ID}
	if order[0] != 2 || order[1] != 3 || order[2] != 1 {
		t.Errorf("order = %v, want [2 3 1]", order)
	}
}

func TestSearch_FailedQueryContributesNothing(t *testing.T) {
	client := &mockClient{
		searchReposFn: func(_ context.Context, query string, _ *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error) {
			if strings.HasPrefix(query, "user:") {
				return nil, nil, errors.New("rate limited")
			}
			if strings.HasPrefix(query, "repo:") {
				return &gh.RepositoriesSearchResult{Repositories: []*gh.Repository{rankedRepo(7, "x/y", 1)}}, okResponse(), nil
			}
			return &gh.RepositoriesSearchResult{}, okResponse(), nil
		},
	}

	got := NewSearcher(client, logging.Discard()).Search(context.Background(), "y")
	if len(got) != 1 || got[0].ID != 7 {
		t.Errorf("unexpected results: %+v", got)
	}
}

func TestSearch_EmptyText(t *testing.T) {
	calls := 0
	client := &mockClient{
		searchReposFn: func(context.Context, string, *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error) {
			calls++
			return &gh.RepositoriesSearchResult{}, okResponse(), nil
		},
	}
	if got := NewSearcher(client, logging.Discard()).Search(context.Background(), "   "); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if calls != 0 {
		t.Errorf("expected no API calls, got %d", calls)
	}
}

func TestSearch_Caching(t *testing.T) {
	calls := 0
	client := &mockClient{
		searchReposFn: func(context.Context, string, *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error) {
			calls++
			return &gh.RepositoriesSearchResult{}, okResponse(), nil
		},
	}

	s := NewSearcher(client, logging.Discard())
	s.Search(context.Background(), "Shelf")
	s.Search(context.Background(), "shelf")

	if calls != 6 {
		t.Errorf("expected 6 API calls (one search), got %d", calls)
	}
}

func TestSearch_NoCache(t *testing.T) {
	calls := 0
	client := &mockClient{
		searchReposFn: func(context.Context, string, *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error) {
			calls++
			return &gh.RepositoriesSearchResult{}, okResponse(), nil
		},
	}

	s := NewSearcher(client, logging.Discard())
	s.NoCache = true
	s.Search(context.Background(), "shelf")
	s.Search(context.Background(), "shelf")

	if calls != 12 {
		t.Errorf("expected 12 API calls with caching disabled, got %d", calls)
	}
}
