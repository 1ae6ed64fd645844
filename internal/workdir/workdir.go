// Package workdir manages the working directory a board's oracle and kernel
// processes share.
package workdir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type Dir struct {
	path string
	mu   sync.Mutex
}

// Open creates path if needed.
func Open(path string) (*Dir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work dir %s: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work dir %s: %w", abs, err)
	}
	return &Dir{path: abs}, nil
}

func (d *Dir) Path() string {
	return d.path
}

func (d *Dir) Join(name string) string {
	return filepath.Join(d.path, name)
}

func (d *Dir) HasFile(name string) bool {
	info, err := os.Stat(d.Join(name))
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes name; a missing file is not an error.
func (d *Dir) Remove(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := os.Remove(d.Join(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// Clean removes every regular file matching the glob pattern and returns how
// many were removed.
func (d *Dir) Clean(pattern string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(d.path, pattern))
	if err != nil {
		return 0, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	removed := 0
	for _, m := range matches {
		info, err := os.Lstat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if err := os.Remove(m); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", m, err)
		}
		removed++
	}
	return removed, nil
}
