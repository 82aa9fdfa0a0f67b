// Package file stores a slot as a JSON file on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Slot is a value stored in <dir>/<key>.json.
type Slot struct {
	path string
}

// New returns a slot for key inside dir, creating dir if needed.
func New(dir, key string) (*Slot, error) {
	if key == "" {
		return nil, errors.New("slot key cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create slot directory: %w", err)
	}
	return &Slot{path: filepath.Join(dir, key+".json")}, nil
}

// Path returns the backing file.
func (s *Slot) Path() string {
	return s.path
}

func (s *Slot) Get(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, true, nil
}

// Set writes value to a temporary file and renames it over the slot so a
// crash never leaves a half-written collection behind.
func (s *Slot) Set(ctx context.Context, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
