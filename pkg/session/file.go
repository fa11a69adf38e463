package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/heightcompare/pkg/errors"
)

// FileStore is a file-based board store for the CLI.
// Boards are stored as indented JSON files in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns ~/.config/heightcompare/boards.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "heightcompare", "boards"), nil
}

// NewFileStore creates a new file-based board store.
// If baseDir is empty, defaults to [DefaultDir].
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create board dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) boardPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := errors.ValidateBoardID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	sess, err := s.read(s.boardPath(id))
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, err
	}
	if sess.IsExpired(now()) {
		_ = s.Delete(ctx, id)
		return nil, notFound(id)
	}
	return sess, nil
}

func (s *FileStore) read(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse board %s: %w", filepath.Base(path), err)
	}
	return &sess, nil
}

// Set writes the board atomically through a temp file and rename.
func (s *FileStore) Set(ctx context.Context, sess *Session) error {
	if err := errors.ValidateBoardID(sess.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.boardPath(sess.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write board file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write board file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateBoardID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.boardPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove board file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read board dir: %w", err)
	}

	t := now()
	var out []*Session
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		sess, err := s.read(filepath.Join(s.baseDir, entry.Name()))
		if err != nil || sess.IsExpired(t) {
			continue
		}
		out = append(out, sess)
	}
	sortByUpdated(out)
	return out, nil
}

// Cleanup removes expired and unreadable board files.
func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read board dir: %w", err)
	}

	t := now()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		path := filepath.Join(s.baseDir, name)
		sess, err := s.read(path)
		if err != nil || sess.IsExpired(t) {
			os.Remove(path)
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for board files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
