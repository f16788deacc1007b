package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// Client defines the GitHub API methods used by this application.
type Client interface {
	ListUserRepos(ctx context.Context, opts *gh.RepositoryListByAuthenticatedUserOptions) ([]*gh.Repository, *gh.Response, error)
	ListStarred(ctx context.Context, opts *gh.ActivityListStarredOptions) ([]*gh.StarredRepository, *gh.Response, error)
	SearchRepositories(ctx context.Context, query string, opts *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error)
	GetAuthenticatedUser(ctx context.Context) (*gh.User, *gh.Response, error)
	GetRepository(ctx context.Context, owner, repo string) (*gh.Repository, *gh.Response, error)
	CreateRepository(ctx context.Context, repo *gh.Repository) (*gh.Repository, *gh.Response, error)
	DeleteRepository(ctx context.Context, owner, repo string) (*gh.Response, error)
	GetContents(ctx context.Context, owner, repo, path string) (*gh.RepositoryContent, *gh.Response, error)
	CreateFile(ctx context.Context, owner, repo, path string, opts *gh.RepositoryContentFileOptions) (*gh.RepositoryContentResponse, *gh.Response, error)
	UpdateFile(ctx context.Context, owner, repo, path string, opts *gh.RepositoryContentFileOptions) (*gh.RepositoryContentResponse, *gh.Response, error)
	GetArchiveLink(ctx context.Context, owner, repo string) (*url.URL, *gh.Response, error)
	HTTPClient() *http.Client
}

// realClient wraps the go-github client to implement Client.
type realClient struct {
	inner *gh.Client
	http  *http.Client
}

// NewClient creates a new GitHub API client authenticated with the given
// token. A non-empty apiURL points the client at a GitHub Enterprise or test
// server instead of api.github.com.
func NewClient(token, apiURL string) (Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	inner := gh.NewClient(httpClient)
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		u, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("parsing API URL %q: %w", apiURL, err)
		}
		inner.BaseURL = u
	}
	return &realClient{inner: inner, http: httpClient}, nil
}

func (c *realClient) ListUserRepos(ctx context.Context, opts *gh.RepositoryListByAuthenticatedUserOptions) ([]*gh.Repository, *gh.Response, error) {
	return c.inner.Repositories.ListByAuthenticatedUser(ctx, opts)
}

func (c *realClient) ListStarred(ctx context.Context, opts *gh.ActivityListStarredOptions) ([]*gh.StarredRepository, *gh.Response, error) {
	return c.inner.Activity.ListStarred(ctx, "", opts)
}

func (c *realClient) SearchRepositories(ctx context.Context, query string, opts *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error) {
	return c.inner.Search.Repositories(ctx, query, opts)
}

func (c *realClient) GetAuthenticatedUser(ctx context.Context) (*gh.User, *gh.Response, error) {
	return c.inner.Users.Get(ctx, "")
}

func (c *realClient) GetRepository(ctx context.Context, owner, repo string) (*gh.Repository, *gh.Response, error) {
	return c.inner.Repositories.Get(ctx, owner, repo)
}

func (c *realClient) CreateRepository(ctx context.Context, repo *gh.Repository) (*gh.Repository, *gh.Response, error) {
	return c.inner.Repositories.Create(ctx, "", repo)
}

func (c *realClient) DeleteRepository(ctx context.Context, owner, repo string) (*gh.Response, error) {
	return c.inner.Repositories.Delete(ctx, owner, repo)
}

func (c *realClient) GetContents(ctx context.Context, owner, repo, path string) (*gh.RepositoryContent, *gh.Response, error) {
	file, _, resp, err := c.inner.Repositories.GetContents(ctx, owner, repo, path, nil)
	return file, resp, err
}

func (c *realClient) CreateFile(ctx context.Context, owner, repo, path string, opts *gh.RepositoryContentFileOptions) (*gh.RepositoryContentResponse, *gh.Response, error) {
	return c.inner.Repositories.CreateFile(ctx, owner, repo, path, opts)
}

func (c *realClient) UpdateFile(ctx context.Context, owner, repo, path string, opts *gh.RepositoryContentFileOptions) (*gh.RepositoryContentResponse, *gh.Response, error) {
	return c.inner.Repositories.UpdateFile(ctx, owner, repo, path, opts)
}

func (c *realClient) GetArchiveLink(ctx context.Context, owner, repo string) (*url.URL, *gh.Response, error) {
	return c.inner.Repositories.GetArchiveLink(ctx, owner, repo, gh.Zipball, nil, 1)
}

func (c *realClient) HTTPClient() *http.Client {
	return c.http
}
