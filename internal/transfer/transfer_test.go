package transfer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	gh "github.com/google/go-github/v68/github"
	"github.com/stahnma/gh-shelf/internal/github"
	"github.com/stahnma/gh-shelf/internal/logging"
)

// fakeRepo is an in-memory repository behind the contents and archive APIs.
// Methods it does not override panic through the nil embedded interface.
type fakeRepo struct {
	github.Client

	mu       sync.Mutex
	files    map[string][]byte
	failPath string
	archive  string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{files: map[string][]byte{}}
}

func (f *fakeRepo) GetContents(_ context.Context, _, _, p string) (*gh.RepositoryContent, *gh.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[p]; ok {
		return &gh.RepositoryContent{SHA: gh.Ptr("sha-" + p)}, &gh.Response{Response: &http.Response{StatusCode: 200}}, nil
	}
	resp := &http.Response{StatusCode: http.StatusNotFound}
	return nil, &gh.Response{Response: resp}, &gh.ErrorResponse{Response: resp, Message: "Not Found"}
}

func (f *fakeRepo) CreateFile(_ context.Context, _, _, p string, opts *gh.RepositoryContentFileOptions) (*gh.RepositoryContentResponse, *gh.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p == f.failPath {
		return nil, nil, errors.New("server said no")
	}
	f.files[p] = opts.Content
	return &gh.RepositoryContentResponse{}, &gh.Response{Response: &http.Response{StatusCode: 201}}, nil
}

func (f *fakeRepo) UpdateFile(_ context.Context, _, _, p string, opts *gh.RepositoryContentFileOptions) (*gh.RepositoryContentResponse, *gh.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if opts.GetSHA() != "sha-"+p {
		return nil, nil, errors.New("sha mismatch")
	}
	f.files[p] = opts.Content
	return &gh.RepositoryContentResponse{}, &gh.Response{Response: &http.Response{StatusCode: 200}}, nil
}

func (f *fakeRepo) GetArchiveLink(context.Context, string, string) (*url.URL, *gh.Response, error) {
	u, err := url.Parse(f.archive)
	return u, nil, err
}

func (f *fakeRepo) HTTPClient() *http.Client {
	return http.DefaultClient
}

func (f *fakeRepo) paths() []string {
	var out []string
	for p := range f.files {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// --- Upload ---

func TestUpload_SingleFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "notes.txt")
	writeFile(t, p, "hi")

	repo := newFakeRepo()
	res, err := Upload(context.Background(), repo, logging.Discard(), "alice", "box", p)
	if err != nil {
		t.Fatal(err)
	}
	if string(repo.files["notes.txt"]) != "hi" {
		t.Errorf("files = %v", repo.paths())
	}
	if len(res.Files) != 1 || res.Err() != nil {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestUpload_UpdatesExisting(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "notes.txt")
	writeFile(t, p, "new")

	repo := newFakeRepo()
	repo.files["notes.txt"] = []byte("old")
	if _, err := Upload(context.Background(), repo, logging.Discard(), "alice", "box", p); err != nil {
		t.Fatal(err)
	}
	if string(repo.files["notes.txt"]) != "new" {
		t.Errorf("content = %q, want new", repo.files["notes.txt"])
	}
}

func TestUpload_Directory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "project")
	writeFile(t, filepath.Join(root, "README.md"), "# p")
	writeFile(t, filepath.Join(root, "src", "main.go"), "package main")
	writeFile(t, filepath.Join(root, "tokens.json"), "[]")
	writeFile(t, filepath.Join(root, "cache", "x.pyc"), "bytecode")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref")
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	repo := newFakeRepo()
	res, err := Upload(context.Background(), repo, logging.Discard(), "alice", "box", root)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"project/.gitkeep",
		"project/README.md",
		"project/cache/.gitkeep",
		"project/empty/.gitkeep",
		"project/src/.gitkeep",
		"project/src/main.go",
	}
	if got := repo.paths(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v\nwant    %v", got, want)
	}
	if len(res.Skipped) != 3 {
		t.Errorf("Skipped = %v, want tokens.json, x.pyc and .git", res.Skipped)
	}
}

func TestUpload_FailureDoesNotStopWalk(t *testing.T) {
	root := filepath.Join(t.TempDir(), "d")
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "b.txt"), "b")

	repo := newFakeRepo()
	repo.failPath = "d/a.txt"
	res, err := Upload(context.Background(), repo, logging.Discard(), "alice", "box", root)
	if err != nil {
		t.Fatal(err)
	}
	if res.Err() == nil {
		t.Error("expected the failed file to be reported")
	}
	if _, ok := repo.files["d/b.txt"]; !ok {
		t.Error("b.txt should still be uploaded")
	}
}

func TestUpload_MissingPath(t *testing.T) {
	_, err := Upload(context.Background(), newFakeRepo(), logging.Discard(), "alice", "box", filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Error("expected error")
	}
}

// --- Download ---

func zipArchive(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func archiveServer(t *testing.T, data []byte, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownload(t *testing.T) {
	data := zipArchive(t, map[string]string{
		"alice-box-abc123/":           "",
		"alice-box-abc123/README.md":  "hello",
		"alice-box-abc123/pkg/lib.go": "package pkg",
	})
	repo := newFakeRepo()
	repo.archive = archiveServer(t, data, http.StatusOK).URL + "/zip"

	dest := t.TempDir()
	target, err := Download(context.Background(), repo, "alice", "box", dest, false)
	if err != nil {
		t.Fatal(err)
	}
	if target != filepath.Join(dest, "box") {
		t.Errorf("target = %q", target)
	}
	got, err := os.ReadFile(filepath.Join(target, "pkg", "lib.go"))
	if err != nil || string(got) != "package pkg" {
		t.Errorf("lib.go = %q, %v", got, err)
	}
	if _, err := os.Stat(filepath.Join(target, "alice-box-abc123")); !os.IsNotExist(err) {
		t.Error("top-level archive directory should be stripped")
	}
}

func TestDownload_ExistingTarget(t *testing.T) {
	data := zipArchive(t, map[string]string{"top/new.txt": "new"})
	repo := newFakeRepo()
	repo.archive = archiveServer(t, data, http.StatusOK).URL

	dest := t.TempDir()
	writeFile(t, filepath.Join(dest, "box", "old.txt"), "old")

	if _, err := Download(context.Background(), repo, "alice", "box", dest, false); !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("got %v, want ErrDestinationExists", err)
	}

	if _, err := Download(context.Background(), repo, "alice", "box", dest, true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dest, "box", "old.txt")); !os.IsNotExist(err) {
		t.Error("overwrite should replace the old contents")
	}
	if _, err := os.Stat(filepath.Join(dest, "box", "new.txt")); err != nil {
		t.Errorf("new.txt missing: %v", err)
	}
}

func TestDownload_RejectsEscapingEntries(t *testing.T) {
	data := zipArchive(t, map[string]string{"top/../../evil.txt": "x"})
	repo := newFakeRepo()
	repo.archive = archiveServer(t, data, http.StatusOK).URL

	dest := t.TempDir()
	if _, err := Download(context.Background(), repo, "alice", "box", dest, false); err == nil {
		t.Error("expected error for escaping entry")
	}
	if _, err := os.Stat(filepath.Join(dest, "evil.txt")); !os.IsNotExist(err) {
		t.Error("escaping entry was written")
	}
}

func TestDownload_BadStatus(t *testing.T) {
	repo := newFakeRepo()
	repo.archive = archiveServer(t, []byte("nope"), http.StatusNotFound).URL

	if _, err := Download(context.Background(), repo, "alice", "box", t.TempDir(), false); err == nil {
		t.Error("expected error")
	}
}

// --- ParseCloneURL ---

func TestParseCloneURL(t *testing.T) {
	tests := []struct {
		in, owner, repo string
		wantErr         bool
	}{
		{"https://github.com/alice/box.git", "alice", "box", false},
		{"https://github.com/alice/box", "alice", "box", false},
		{"alice/box", "alice", "box", false},
		{"  alice/box/  ", "alice", "box", false},
		{"box", "", "", true},
		{"https://github.com/", "", "", true},
	}
	for _, tt := range tests {
		owner, repo, err := ParseCloneURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCloneURL(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if owner != tt.owner || repo != tt.repo {
			t.Errorf("ParseCloneURL(%q) = %q, %q", tt.in, owner, repo)
		}
	}
}
