package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	gh "github.com/google/go-github/v68/github"
	"github.com/stahnma/gh-shelf/internal/model"
)

// DefaultPerPage is the page size used when callers pass 0.
const DefaultPerPage = 100

// ErrRepositoryExists is returned by CreateRepository when the name is taken.
var ErrRepositoryExists = errors.New("repository already exists")

// PageFunc fetches one page of a paginated list endpoint.
type PageFunc[T any] func(ctx context.Context, page, perPage int) ([]T, *gh.Response, error)

// Paginate requests page 1, 2, ... until a page comes back empty, the request
// fails, or the response is not a success. Whatever was collected up to that
// point is returned; failures are logged, never returned. onPage, when set,
// receives the running total after every page.
func Paginate[T any](ctx context.Context, logger *slog.Logger, perPage int, fetch PageFunc[T], onPage func(total int)) []T {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	var all []T
	for page := 1; ; page++ {
		items, resp, err := fetch(ctx, page, perPage)
		if err != nil {
			logger.Debug("pagination stopped on error", slog.Int("page", page), slog.Any("error", err))
			break
		}
		if resp != nil && resp.Response != nil && !successful(resp.StatusCode) {
			logger.Debug("pagination stopped on status", slog.Int("page", page), slog.Int("status", resp.StatusCode))
			break
		}
		if len(items) == 0 {
			break
		}
		all = append(all, items...)
		if onPage != nil {
			onPage(len(all))
		}
	}
	return all
}

func successful(status int) bool {
	return status >= 200 && status < 300
}

func isNotFound(resp *gh.Response) bool {
	return resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound
}

// ListUserRepos returns every repository visible to the authenticated user.
func ListUserRepos(ctx context.Context, client Client, logger *slog.Logger, perPage int, onPage func(total int)) []model.Repository {
	repos := Paginate(ctx, logger, perPage, func(ctx context.Context, page, perPage int) ([]*gh.Repository, *gh.Response, error) {
		return client.ListUserRepos(ctx, &gh.RepositoryListByAuthenticatedUserOptions{
			ListOptions: gh.ListOptions{Page: page, PerPage: perPage},
		})
	}, onPage)
	return ToModels(repos)
}

// ListStarred returns every repository starred by the authenticated user.
func ListStarred(ctx context.Context, client Client, logger *slog.Logger, perPage int, onPage func(total int)) []model.Repository {
	starred := Paginate(ctx, logger, perPage, func(ctx context.Context, page, perPage int) ([]*gh.StarredRepository, *gh.Response, error) {
		return client.ListStarred(ctx, &gh.ActivityListStarredOptions{
			ListOptions: gh.ListOptions{Page: page, PerPage: perPage},
		})
	}, onPage)

	repos := make([]*gh.Repository, 0, len(starred))
	for _, s := range starred {
		repos = append(repos, s.GetRepository())
	}
	return ToModels(repos)
}

// Whoami returns the login of the token's owner.
func Whoami(ctx context.Context, client Client) (string, error) {
	user, _, err := client.GetAuthenticatedUser(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching authenticated user: %w", err)
	}
	login := user.GetLogin()
	if login == "" {
		return "", errors.New("authenticated user has no login")
	}
	return login, nil
}

// NewRepository describes a repository to create for the authenticated user.
type NewRepository struct {
	Name        string
	Description string
	Private     bool
	WithReadme  bool
}

// CreateRepository creates req under the authenticated user after checking
// that owner/name is free. Only a 404 from the check counts as free.
func CreateRepository(ctx context.Context, client Client, owner string, req NewRepository) (model.Repository, error) {
	if req.Name == "" {
		return model.Repository{}, errors.New("repository name is required")
	}
	_, resp, err := client.GetRepository(ctx, owner, req.Name)
	switch {
	case err == nil:
		return model.Repository{}, fmt.Errorf("%s/%s: %w", owner, req.Name, ErrRepositoryExists)
	case !isNotFound(resp):
		return model.Repository{}, fmt.Errorf("checking repository %s/%s: %w", owner, req.Name, err)
	}

	created, _, err := client.CreateRepository(ctx, &gh.Repository{
		Name:        gh.Ptr(req.Name),
		Description: gh.Ptr(req.Description),
		Private:     gh.Ptr(req.Private),
		AutoInit:    gh.Ptr(req.WithReadme),
	})
	if err != nil {
		return model.Repository{}, fmt.Errorf("creating repository %s: %w", req.Name, err)
	}
	return ToModel(created), nil
}

// DeleteRepositories deletes each owner/name in turn. A failure does not stop
// the remaining deletions; the names that were deleted are returned together
// with the joined failures.
func DeleteRepositories(ctx context.Context, client Client, logger *slog.Logger, owner string, names []string) ([]string, error) {
	var deleted []string
	var errs []error
	for _, name := range names {
		if _, err := client.DeleteRepository(ctx, owner, name); err != nil {
			logger.Warn("failed to delete repository", slog.String("repo", owner+"/"+name), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("deleting %s/%s: %w", owner, name, err))
			continue
		}
		logger.Info("deleted repository", slog.String("repo", owner+"/"+name))
		deleted = append(deleted, name)
	}
	return deleted, errors.Join(errs...)
}
