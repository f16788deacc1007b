// Package cache persists fetched repository lists per identity, in memory and
// as JSON files on disk.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stahnma/gh-shelf/internal/model"
)

// Kind names one of the cached lists.
type Kind string

const (
	KindRepos   Kind = "repos"
	KindStarred Kind = "starred_repos"
)

// Kinds lists every cached list.
var Kinds = []Kind{KindRepos, KindStarred}

// ErrInvalidIdentity is returned for identities that cannot name a cache file.
var ErrInvalidIdentity = errors.New("invalid identity")

// Entry is one cached list together with the time it was stored.
type Entry struct {
	Timestamp Timestamp          `json:"timestamp"`
	Repos     []model.Repository `json:"repos"`
}

// timestampLayouts are the ISO-8601 forms accepted when reading a cache file.
// Files written by older versions carry no zone and are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// Timestamp is the capture time of a cache entry. It is written as RFC 3339
// and read from any of timestampLayouts. A value that does not parse decodes
// as the zero time rather than failing the whole entry.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

// ValidIdentity reports whether identity can be used as part of a cache file
// name.
func ValidIdentity(identity string) error {
	if identity == "" || identity == "." || strings.Contains(identity, "..") || strings.ContainsAny(identity, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentity, identity)
	}
	return nil
}

// Store keeps cache entries in memory and mirrors every write to
// <dir>/<identity>_<kind>_cache.json.
type Store struct {
	dir    string
	logger *slog.Logger
	inner  *gocache.Cache
	now    func() time.Time
}

// New creates a Store rooted at dir. The directory is created on first write.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:    dir,
		logger: logger,
		inner:  gocache.New(gocache.NoExpiration, 0),
		now:    time.Now,
	}
}

func key(identity string, kind Kind) string {
	return identity + "/" + string(kind)
}

// Path returns the file backing identity's kind list.
func (s *Store) Path(identity string, kind Kind) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s_cache.json", identity, kind))
}

// Put replaces the cached list for identity and kind and writes it to disk.
// The memory entry is replaced even when the write fails.
func (s *Store) Put(identity string, kind Kind, repos []model.Repository) error {
	if err := ValidIdentity(identity); err != nil {
		return err
	}
	if repos == nil {
		repos = []model.Repository{}
	}
	entry := Entry{Timestamp: Timestamp{s.now().UTC()}, Repos: repos}
	s.inner.Set(key(identity, kind), entry, gocache.NoExpiration)

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s cache: %w", kind, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(s.Path(identity, kind), data, 0o600); err != nil {
		return fmt.Errorf("writing %s cache: %w", kind, err)
	}
	s.logger.Debug("cache saved", slog.String("identity", identity), slog.String("kind", string(kind)), slog.Int("count", len(repos)))
	return nil
}

// Get returns the cached list, consulting memory before disk.
func (s *Store) Get(identity string, kind Kind) (Entry, bool) {
	if val, found := s.inner.Get(key(identity, kind)); found {
		if entry, ok := val.(Entry); ok {
			return entry, true
		}
	}
	return s.Load(identity, kind)
}

// Load reads the cache file into memory. A missing or malformed file means
// there is no cached data; malformed files are logged.
func (s *Store) Load(identity string, kind Kind) (Entry, bool) {
	if err := ValidIdentity(identity); err != nil {
		s.logger.Warn("refusing to read cache", slog.Any("error", err))
		return Entry{}, false
	}
	path := s.Path(identity, kind)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("cache read failed", slog.String("path", path), slog.Any("error", err))
		}
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("cache file is malformed, ignoring", slog.String("path", path), slog.Any("error", err))
		return Entry{}, false
	}
	if entry.Repos == nil {
		entry.Repos = []model.Repository{}
	}
	s.inner.Set(key(identity, kind), entry, gocache.NoExpiration)
	return entry, true
}

// Clear drops the cached list for identity and kind from memory and disk.
func (s *Store) Clear(identity string, kind Kind) error {
	if err := ValidIdentity(identity); err != nil {
		return err
	}
	s.inner.Delete(key(identity, kind))
	if err := os.Remove(s.Path(identity, kind)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s cache: %w", kind, err)
	}
	return nil
}

// ClearAll drops every cached list for identity.
func (s *Store) ClearAll(identity string) error {
	var errs []error
	for _, kind := range Kinds {
		errs = append(errs, s.Clear(identity, kind))
	}
	return errors.Join(errs...)
}
