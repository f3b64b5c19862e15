package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local implements Store over a flat directory. Used by the one-shot CLI and
// in tests; subdirectories are ignored, matching the flat bucket layout.
type Local struct {
	basePath string
}

// NewLocal creates a directory-backed store, creating the directory if needed.
func NewLocal(basePath string) (*Local, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &Local{basePath: basePath}, nil
}

func (l *Local) List(_ context.Context) ([]Object, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		return nil, fmt.Errorf("listing storage directory: %w", err)
	}
	var objects []Object
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		objects = append(objects, Object{Name: e.Name(), Size: info.Size()})
	}
	return objects, nil
}

func (l *Local) Download(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.basePath, name))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

func (l *Local) Delete(_ context.Context, name string) error {
	if err := os.Remove(filepath.Join(l.basePath, name)); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
