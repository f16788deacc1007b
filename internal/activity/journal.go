// Package activity keeps the user-facing history of what the tool did.
package activity

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const stampLayout = "2006-01-02 15:04:05"

// Journal appends timestamped lines to a plain-text file.
type Journal struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewJournal returns a Journal writing to path. The parent directory is
// created on first use.
func NewJournal(path string) *Journal {
	return &Journal{path: path, now: time.Now}
}

// Path returns the journal file.
func (j *Journal) Path() string {
	return j.path
}

// Add appends "[YYYY-MM-DD HH:MM:SS] msg" and returns the written line.
func (j *Journal) Add(msg string) (string, error) {
	line := fmt.Sprintf("[%s] %s", j.now().Format(stampLayout), msg)

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return line, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return line, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return line, fmt.Errorf("writing activity log: %w", err)
	}
	return line, nil
}

// Addf formats and adds a line.
func (j *Journal) Addf(format string, args ...any) error {
	_, err := j.Add(fmt.Sprintf(format, args...))
	return err
}

// Entries returns every line in the journal, oldest first. A missing file has
// no entries.
func (j *Journal) Entries() ([]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.Open(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// Clear empties the journal.
func (j *Journal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	if err := os.WriteFile(j.path, nil, 0o644); err != nil {
		return fmt.Errorf("clearing activity log: %w", err)
	}
	return nil
}
