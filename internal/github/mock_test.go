package github

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"
)

var errNotMocked = errors.New("not mocked")

// mockClient implements Client for testing.
type mockClient struct {
	listUserReposFn  func(ctx context.Context, opts *gh.RepositoryListByAuthenticatedUserOptions) ([]*gh.Repository, *gh.Response, error)
	listStarredFn    func(ctx context.Context, opts *gh.ActivityListStarredOptions) ([]*gh.StarredRepository, *gh.Response, error)
	searchReposFn    func(ctx context.Context, query string, opts *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error)
	getUserFn        func(ctx context.Context) (*gh.User, *gh.Response, error)
	getRepositoryFn  func(ctx context.Context, owner, repo string) (*gh.Repository, *gh.Response, error)
	createRepoFn     func(ctx context.Context, repo *gh.Repository) (*gh.Repository, *gh.Response, error)
	deleteRepoFn     func(ctx context.Context, owner, repo string) (*gh.Response, error)
	getContentsFn    func(ctx context.Context, owner, repo, path string) (*gh.RepositoryContent, *gh.Response, error)
	createFileFn     func(ctx context.Context, owner, repo, path string, opts *gh.RepositoryContentFileOptions) (*gh.RepositoryContentResponse, *gh.Response, error)
	updateFileFn     func(ctx context.Context, owner, repo, path string, opts *gh.RepositoryContentFileOptions) (*gh.RepositoryContentResponse, *gh.Response, error)
	getArchiveLinkFn func(ctx context.Context, owner, repo string) (*url.URL, *gh.Response, error)
}

func (m *mockClient) ListUserRepos(ctx context.Context, opts *gh.RepositoryListByAuthenticatedUserOptions) ([]*gh.Repository, *gh.Response, error) {
	if m.listUserReposFn == nil {
		return nil, nil, errNotMocked
	}
	return m.listUserReposFn(ctx, opts)
}

func (m *mockClient) ListStarred(ctx context.Context, opts *gh.ActivityListStarredOptions) ([]*gh.StarredRepository, *gh.Response, error) {
	if m.listStarredFn == nil {
		return nil, nil, errNotMocked
	}
	return m.listStarredFn(ctx, opts)
}

func (m *mockClient) SearchRepositories(ctx context.Context, query string, opts *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error) {
	if m.searchReposFn == nil {
		return nil, nil, errNotMocked
	}
	return m.searchReposFn(ctx, query, opts)
}

func (m *mockClient) GetAuthenticatedUser(ctx context.Context) (*gh.User, *gh.Response, error) {
	if m.getUserFn == nil {
		return nil, nil, errNotMocked
	}
	return m.getUserFn(ctx)
}

func (m *mockClient) GetRepository(ctx context.Context, owner, repo string) (*gh.Repository, *gh.Response, error) {
	if m.getRepositoryFn == nil {
		return nil, nil, errNotMocked
	}
	return m.getRepositoryFn(ctx, owner, repo)
}

func (m *mockClient) CreateRepository(ctx context.Context, repo *gh.Repository) (*gh.Repository, *gh.Response, error) {
	if m.createRepoFn == nil {
		return nil, nil, errNotMocked
	}
	return m.createRepoFn(ctx, repo)
}

func (m *mockClient) DeleteRepository(ctx context.Context, owner, repo string) (*gh.Response, error) {
	if m.deleteRepoFn == nil {
		return nil, errNotMocked
	}
	return m.deleteRepoFn(ctx, owner, repo)
}

func (m *mockClient) GetContents(ctx context.Context, owner, repo, path string) (*gh.RepositoryContent, *gh.Response, error) {
	if m.getContentsFn == nil {
		return nil, nil, errNotMocked
	}
	return m.getContentsFn(ctx, owner, repo, path)
}

func (m *mockClient) CreateFile(ctx context.Context, owner, repo, path string, opts *gh.RepositoryContentFileOptions) (*gh.RepositoryContentResponse, *gh.Response, error) {
	if m.createFileFn == nil {
		return nil, nil, errNotMocked
	}
	return m.createFileFn(ctx, owner, repo, path, opts)
}

func (m *mockClient) UpdateFile(ctx context.Context, owner, repo, path string, opts *gh.RepositoryContentFileOptions) (*gh.RepositoryContentResponse, *gh.Response, error) {
	if m.updateFileFn == nil {
		return nil, nil, errNotMocked
	}
	return m.updateFileFn(ctx, owner, repo, path, opts)
}

func (m *mockClient) GetArchiveLink(ctx context.Context, owner, repo string) (*url.URL, *gh.Response, error) {
	if m.getArchiveLinkFn == nil {
		return nil, nil, errNotMocked
	}
	return m.getArchiveLinkFn(ctx, owner, repo)
}

func (m *mockClient) HTTPClient() *http.Client {
	return http.DefaultClient
}

// okResponse returns a *gh.Response with a 200 status.
func okResponse() *gh.Response {
	return statusResponse(http.StatusOK)
}

func statusResponse(code int) *gh.Response {
	return &gh.Response{
		Response: &http.Response{StatusCode: code},
	}
}

// notFound builds the error go-github returns for a 404.
func notFound() (*gh.Response, error) {
	resp := statusResponse(http.StatusNotFound)
	return resp, &gh.ErrorResponse{Response: resp.Response, Message: "Not Found"}
}

func makeRepo(id int64, fullName string) *gh.Repository {
	return &gh.Repository{
		ID:       gh.Ptr(id),
		Name:     gh.Ptr(baseName(fullName)),
		FullName: gh.Ptr(fullName),
	}
}

func baseName(fullName string) string {
	_, name, found := strings.Cut(fullName, "/")
	if !found {
		return fullName
	}
	return name
}
