package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// document is one JSON file held in memory. Every mutation rewrites the
// whole file through a temp file and rename, so readers of the file never
// observe a partial write.
type document[T any] struct {
	path string
	mu   sync.RWMutex
	data T
}

func openDocument[T any](path string, empty func() T) (*document[T], error) {
	d := &document[T]{path: path, data: empty()}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return d, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(raw) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(raw, &d.data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}
	return d, nil
}

func (d *document[T]) read(fn func(T)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.data)
}

// update hands fn the current value. When fn reports a change, the new value
// is persisted first and only then becomes visible in memory.
func (d *document[T]) update(fn func(T) (T, bool)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, changed := fn(d.data)
	if !changed {
		return nil
	}
	if err := writeAtomic(d.path, next); err != nil {
		return err
	}
	d.data = next
	return nil
}

func writeAtomic(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}
