// Package artifact persists the trained model bundle. A bundle is a single
// blob, written with replace-on-rename so readers never observe a partially
// written model.
package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"fintrack/internal/classifier"
	"fintrack/internal/fileutils"
	"fintrack/internal/modelerror"

	"gopkg.in/yaml.v3"
)

// Store saves and loads the model bundle.
type Store interface {
	// Save replaces the stored bundle atomically.
	Save(ctx context.Context, b *classifier.Bundle) error

	// Load returns the stored bundle. A missing bundle yields an error
	// matching modelerror.ErrArtifactNotFound; anything unreadable or
	// inconsistent yields *modelerror.ArtifactError.
	Load(ctx context.Context) (*classifier.Bundle, error)
}

// FileStore keeps the bundle as a YAML file.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the bundle file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Save(ctx context.Context, b *classifier.Bundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return &modelerror.ArtifactError{Path: s.path, Op: "save", Err: err}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if err := enc.Encode(b); err != nil {
		return &modelerror.ArtifactError{Path: s.path, Op: "encode", Err: err}
	}
	if err := enc.Close(); err != nil {
		return &modelerror.ArtifactError{Path: s.path, Op: "encode", Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary model file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace model file: %w", err)
	}
	committed = true
	return nil
}

func (s *FileStore) Load(ctx context.Context) (*classifier.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, modelerror.ErrArtifactNotFound)
		}
		return nil, &modelerror.ArtifactError{Path: s.path, Op: "read", Err: err}
	}

	var b classifier.Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, &modelerror.ArtifactError{Path: s.path, Op: "decode", Err: err}
	}
	if err := b.Validate(); err != nil {
		return nil, &modelerror.ArtifactError{Path: s.path, Op: "validate", Err: err}
	}
	return &b, nil
}

// MemoryStore holds the bundle in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	bundle *classifier.Bundle
	saves  int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, b *classifier.Bundle) error {
	if err := b.Validate(); err != nil {
		return &modelerror.ArtifactError{Path: "memory", Op: "save", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = b
	s.saves++
	return nil
}

func (s *MemoryStore) Load(ctx context.Context) (*classifier.Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bundle == nil {
		return nil, fmt.Errorf("memory: %w", modelerror.ErrArtifactNotFound)
	}
	return s.bundle, nil
}

// Saves returns how many bundles were written.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
