// Package tokens manages the saved list of GitHub access tokens and the
// encrypted copy of the last token that logged in successfully.
package tokens

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
)

// MinLength is the shortest token Add accepts.
const MinLength = 8

const (
	listFile   = "tokens.json"
	keyFile    = "key.bin"
	sealedFile = "encrypted_token.bin"
)

// ProtectedFiles are the file names in the token directory that must never be
// published anywhere.
var ProtectedFiles = []string{listFile, keyFile, sealedFile}

var (
	ErrEmptyToken     = errors.New("token is empty")
	ErrDuplicateToken = errors.New("token already saved")
	ErrTokenTooShort  = fmt.Errorf("token must be at least %d characters", MinLength)
	ErrNoSuchToken    = errors.New("no token at that index")
)

// Store is the token list persisted as a JSON array.
type Store struct {
	dir    string
	logger *slog.Logger

	mu     sync.Mutex
	tokens []string
}

// Open loads the token list from dir, creating an empty list when the file is
// missing. A malformed file is replaced by an empty list.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating token directory: %w", err)
	}
	s := &Store{dir: dir, logger: logger}

	data, err := os.ReadFile(s.path())
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.tokens = []string{}
		return s, s.save()
	case err != nil:
		return nil, fmt.Errorf("reading token list: %w", err)
	}

	if err := json.Unmarshal(data, &s.tokens); err != nil {
		logger.Warn("token list is malformed, starting over", slog.String("path", s.path()), slog.Any("error", err))
		s.tokens = []string{}
		return s, s.save()
	}
	return s, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, listFile)
}

func (s *Store) save() error {
	data, err := json.Marshal(s.tokens)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(), data, 0o600); err != nil {
		return fmt.Errorf("writing token list: %w", err)
	}
	return nil
}

// Add validates token and appends it to the list.
func (s *Store) Add(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t == token {
			return ErrDuplicateToken
		}
	}
	if len(token) < MinLength {
		return ErrTokenTooShort
	}
	s.tokens = append(s.tokens, token)
	return s.save()
}

// Remove deletes the token at index.
func (s *Store) Remove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.tokens) {
		return fmt.Errorf("%w: %d", ErrNoSuchToken, index)
	}
	s.tokens = append(s.tokens[:index], s.tokens[index+1:]...)
	return s.save()
}

// List returns a copy of the saved tokens in the order they were added.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Last returns the most recently added token.
func (s *Store) Last() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tokens) == 0 {
		return "", false
	}
	return s.tokens[len(s.tokens)-1], true
}

// Mask hides everything but the first and last four characters.
func Mask(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + "****" + token[len(token)-4:]
}

// Remember stores token sealed with a freshly generated key.
func (s *Store) Remember(token string) error {
	var key [32]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return fmt.Errorf("generating key: %w", err)
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(token), &nonce, &key)

	if err := os.WriteFile(filepath.Join(s.dir, keyFile), key[:], 0o600); err != nil {
		return fmt.Errorf("writing key: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, sealedFile), sealed, 0o600); err != nil {
		return fmt.Errorf("writing sealed token: %w", err)
	}
	return nil
}

// Recall returns the remembered token. Missing or unreadable files mean
// nothing is remembered.
func (s *Store) Recall() (string, bool) {
	rawKey, err := os.ReadFile(filepath.Join(s.dir, keyFile))
	if err != nil || len(rawKey) != 32 {
		return "", false
	}
	sealed, err := os.ReadFile(filepath.Join(s.dir, sealedFile))
	if err != nil || len(sealed) < 24 {
		return "", false
	}

	var key [32]byte
	var nonce [24]byte
	copy(key[:], rawKey)
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, &key)
	if !ok {
		s.logger.Warn("remembered token could not be decrypted")
		return "", false
	}
	return string(plain), true
}
