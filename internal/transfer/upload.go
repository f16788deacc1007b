// Package transfer moves files between the local disk and a GitHub
// repository through the contents and archive APIs.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/stahnma/gh-shelf/internal/github"
	"github.com/stahnma/gh-shelf/internal/tokens"
)

// UploadResult records what an upload did. Failures never stop the walk.
type UploadResult struct {
	Files       []string
	Directories []string
	Skipped     []string
	Errors      []error
}

// Err joins every per-file failure.
func (r UploadResult) Err() error {
	return errors.Join(r.Errors...)
}

func skipFile(name string) bool {
	return slices.Contains(tokens.ProtectedFiles, name) || strings.HasSuffix(name, ".pyc")
}

// Upload copies localPath into owner/repo. A file lands at its base name. A
// directory lands under its own name, with every directory marked by a
// .gitkeep so empty ones survive.
func Upload(ctx context.Context, client github.Client, logger *slog.Logger, owner, repo, localPath string) (UploadResult, error) {
	var res UploadResult
	info, err := os.Stat(localPath)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", localPath, err)
	}

	base := filepath.Base(filepath.Clean(localPath))
	if !info.IsDir() {
		uploadFile(ctx, client, logger, owner, repo, localPath, base, &res)
		return res, nil
	}

	err = filepath.WalkDir(localPath, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			res.Errors = append(res.Errors, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(localPath, p)
		if err != nil {
			return err
		}
		remote := path.Join(base, filepath.ToSlash(rel))

		if d.IsDir() {
			if d.Name() == ".git" {
				res.Skipped = append(res.Skipped, remote)
				return fs.SkipDir
			}
			if err := github.EnsureDirectory(ctx, client, owner, repo, remote); err != nil {
				logger.Warn("failed to create directory", slog.String("path", remote), slog.Any("error", err))
				res.Errors = append(res.Errors, err)
				return nil
			}
			res.Directories = append(res.Directories, remote)
			return nil
		}
		uploadFile(ctx, client, logger, owner, repo, p, remote, &res)
		return ctx.Err()
	})
	return res, err
}

func uploadFile(ctx context.Context, client github.Client, logger *slog.Logger, owner, repo, localPath, remote string, res *UploadResult) {
	if skipFile(filepath.Base(localPath)) {
		res.Skipped = append(res.Skipped, remote)
		return
	}
	content, err := os.ReadFile(localPath)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Errorf("reading %s: %w", localPath, err))
		return
	}
	if err := github.PutFile(ctx, client, owner, repo, remote, content, "Upload "+remote); err != nil {
		logger.Warn("failed to upload file", slog.String("path", remote), slog.Any("error", err))
		res.Errors = append(res.Errors, err)
		return
	}
	logger.Debug("uploaded file", slog.String("path", remote))
	res.Files = append(res.Files, remote)
}
