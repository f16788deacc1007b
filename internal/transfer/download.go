package transfer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/stahnma/gh-shelf/internal/github"
)

// ErrDestinationExists is returned by Download when the target directory is
// already there and overwrite was not requested.
var ErrDestinationExists = errors.New("destination already exists")

// ParseCloneURL extracts owner and repository from a clone URL such as
// https://github.com/owner/repo.git, or from plain owner/repo.
func ParseCloneURL(s string) (owner, repo string, err error) {
	p := strings.TrimSpace(s)
	if strings.Contains(p, "://") {
		u, err := url.Parse(p)
		if err != nil {
			return "", "", fmt.Errorf("parsing clone URL %q: %w", s, err)
		}
		p = u.Path
	}
	p = strings.Trim(p, "/")
	p = strings.TrimSuffix(p, ".git")

	parts := strings.Split(p, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("clone URL %q does not name owner/repo", s)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// Download fetches the zip archive of owner/repo and unpacks it into
// destDir/repo without the archive's top-level directory. The target
// directory path is returned.
func Download(ctx context.Context, client github.Client, owner, repo, destDir string, overwrite bool) (string, error) {
	target := filepath.Join(destDir, repo)
	if _, err := os.Stat(target); err == nil {
		if !overwrite {
			return "", fmt.Errorf("%s: %w", target, ErrDestinationExists)
		}
	}

	link, _, err := client.GetArchiveLink(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("getting archive link for %s/%s: %w", owner, repo, err)
	}
	data, err := fetch(ctx, client.HTTPClient(), link.String())
	if err != nil {
		return "", err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading archive: %w", err)
	}

	if overwrite {
		if err := os.RemoveAll(target); err != nil {
			return "", fmt.Errorf("removing %s: %w", target, err)
		}
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", target, err)
	}
	if err := extract(zr, target); err != nil {
		return "", err
	}
	return target, nil
}

func fetch(ctx context.Context, hc *http.Client, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading archive: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("downloading archive: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return data, nil
}

// stripTop removes the first path element, which GitHub sets to
// <owner>-<repo>-<sha>.
func stripTop(name string) string {
	_, rest, found := strings.Cut(name, "/")
	if !found {
		return ""
	}
	return rest
}

func extract(zr *zip.Reader, target string) error {
	root := filepath.Clean(target) + string(os.PathSeparator)
	for _, f := range zr.File {
		rel := stripTop(f.Name)
		if rel == "" {
			continue
		}
		dest := filepath.Join(target, filepath.FromSlash(rel))
		if !strings.HasPrefix(dest, root) {
			return fmt.Errorf("archive entry %q escapes %s", f.Name, target)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := writeEntry(f, dest); err != nil {
			return fmt.Errorf("extracting %s: %w", rel, err)
		}
	}
	return nil
}

func writeEntry(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
