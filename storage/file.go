package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// File is a Store backed by one file per document under basePath.
type File struct {
	basePath string
	mu       sync.RWMutex
}

// NewFile creates a File store rooted at basePath, creating the directory
// if it does not already exist.
func NewFile(basePath string) (*File, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage directory")
	}
	return &File{basePath: basePath}, nil
}

func (f *File) path(id string) string {
	return filepath.Join(f.basePath, id+".weave")
}

func (f *File) Save(ctx context.Context, id string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.WriteFile(f.path(id), data, 0o644); err != nil {
		return errors.Wrapf(err, "write document %s", id)
	}
	return nil
}

func (f *File) Load(ctx context.Context, id string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound{ID: id}
		}
		return nil, errors.Wrapf(err, "read document %s", id)
	}
	return data, nil
}

func (f *File) List(ctx context.Context) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		return nil, errors.Wrap(err, "read storage directory")
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".weave") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".weave"))
	}
	return ids, nil
}

func (f *File) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove document %s", id)
	}
	return nil
}

func (f *File) Close() error {
	return nil
}
