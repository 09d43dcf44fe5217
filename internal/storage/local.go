package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Static errors for storage operations.
var (
	// ErrS3NotConfigured is returned when publishing is attempted
	// without S3 configuration.
	ErrS3NotConfigured = errors.New("S3 storage is not configured")
	// ErrRootRequired is returned when no site root is given.
	ErrRootRequired = errors.New("storage: site root is required")
	// ErrNotDirectory is returned when the site root is not a directory.
	ErrNotDirectory = errors.New("storage: site root is not a directory")
	// ErrOutsideRoot is returned when a path escapes the site root.
	ErrOutsideRoot = errors.New("storage: path escapes site root")
)

// LocalStorage implements Storage on top of the site source directory.
// It does not support publishing unless wrapped with S3Storage.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates a LocalStorage rooted at root.
// The directory must already exist.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		return nil, ErrRootRequired
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve site root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat site root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	return &LocalStorage{root: abs}, nil
}

// Root returns the absolute site root.
func (s *LocalStorage) Root() string {
	return s.root
}

// Path joins rel onto the site root. Leading slashes in rel are treated
// as site-absolute, so "/uploads/a.gif" and "uploads/a.gif" are equal.
// The result is not checked against the root; see LocalPath.
func (s *LocalStorage) Path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// LocalPath is Path confined to the site root.
func (s *LocalStorage) LocalPath(rel string) (string, error) {
	return s.resolve(rel)
}

// Exists reports whether rel is an existing file inside the site root.
func (s *LocalStorage) Exists(ctx context.Context, rel string) bool {
	if ctx.Err() != nil {
		return false
	}
	p, err := s.resolve(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Size returns the size of rel in bytes.
func (s *LocalStorage) Size(ctx context.Context, rel string) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	p, err := s.resolve(rel)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", rel, err)
	}
	return info.Size(), nil
}

// Publish is not supported by LocalStorage and returns ErrS3NotConfigured.
func (s *LocalStorage) Publish(_ context.Context, _ string) (string, error) {
	return "", ErrS3NotConfigured
}

// resolve returns the local path of rel, rejecting paths outside the root.
func (s *LocalStorage) resolve(rel string) (string, error) {
	p := s.Path(rel)
	prefix := s.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if p != s.root && !strings.HasPrefix(p, prefix) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	return p, nil
}
