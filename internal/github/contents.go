package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"

	gh "github.com/google/go-github/v68/github"
)

// PutFile writes content to path in owner/repo, updating the existing file
// when there is one.
func PutFile(ctx context.Context, client Client, owner, repo, filePath string, content []byte, message string) error {
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(message),
		Content: content,
	}

	existing, resp, err := client.GetContents(ctx, owner, repo, filePath)
	switch {
	case err == nil && existing != nil:
		opts.SHA = existing.SHA
		if _, _, err := client.UpdateFile(ctx, owner, repo, filePath, opts); err != nil {
			return fmt.Errorf("updating %s: %w", filePath, err)
		}
		return nil
	case err != nil && !isNotFound(resp):
		return fmt.Errorf("checking %s: %w", filePath, err)
	}

	if _, _, err := client.CreateFile(ctx, owner, repo, filePath, opts); err != nil {
		return fmt.Errorf("creating %s: %w", filePath, err)
	}
	return nil
}

// EnsureDirectory makes dir exist in owner/repo by writing an empty .gitkeep
// into it. A directory that already has one is left alone.
func EnsureDirectory(ctx context.Context, client Client, owner, repo, dir string) error {
	keep := path.Join(dir, ".gitkeep")
	if _, _, err := client.GetContents(ctx, owner, repo, keep); err == nil {
		return nil
	}

	_, _, err := client.CreateFile(ctx, owner, repo, keep, &gh.RepositoryContentFileOptions{
		Message: gh.Ptr("Create directory: " + dir),
		Content: []byte{},
	})
	if err != nil && !isUnprocessable(err) {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

func isUnprocessable(err error) bool {
	var ghErr *gh.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnprocessableEntity
}
