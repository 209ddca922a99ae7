package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore keeps artifacts on local disk as <root>/<run_id>/<name>.
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("artifact root is required")
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) Put(_ context.Context, runID, name string, content []byte) error {
	path, err := s.pathFor(runID, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

func (s *FileStore) Get(_ context.Context, runID, name string) ([]byte, error) {
	path, err := s.pathFor(runID, name)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return raw, err
}

func (s *FileStore) List(_ context.Context, runID string) ([]string, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, fmt.Errorf("run_id is required")
	}
	dir := filepath.Join(s.root, runID)
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// Path returns where name lives on disk, for operator messages.
func (s *FileStore) Path(runID, name string) string {
	p, err := s.pathFor(runID, name)
	if err != nil {
		return ""
	}
	return p
}

func (s *FileStore) pathFor(runID, name string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("store is nil")
	}
	runID, name, err := normalizeKey(runID, name)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid artifact name: %s", name)
	}
	return filepath.Join(s.root, runID, filepath.FromSlash(name)), nil
}
