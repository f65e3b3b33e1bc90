package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// FileKV keeps one file per key under Dir, much like browser local storage
// keeps one entry per origin.
type FileKV struct {
	Dir string
}

func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file kv: create dir %q: %w", dir, err)
	}
	return &FileKV{Dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.Dir, url.PathEscape(key)+".json")
}

func (f *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get file kv %q: %w", key, err)
	}
	return string(b), true, nil
}

// Set writes to a temp file and renames it so readers never see a torn value.
func (f *FileKV) Set(ctx context.Context, key, value string) error {
	tmp, err := os.CreateTemp(f.Dir, ".kv-*")
	if err != nil {
		return fmt.Errorf("set file kv %q: create temp: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("set file kv %q: write: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("set file kv %q: close: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("set file kv %q: rename: %w", key, err)
	}

	return nil
}

func (f *FileKV) Remove(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file kv %q: %w", key, err)
	}
	return nil
}
