// Package storage owns the working directory for HTTP-facing artifacts.
// Every request gets a fresh identifier; all files belonging to a request
// are keyed by it, so concurrent requests never collide and cleanup is a
// matter of removing everything carrying the identifier.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const dirPerm = 0o750

// Store manages uuid-keyed artifacts inside a scoped root directory
type Store struct {
	root string
}

// NewStore creates a store rooted at the given directory, creating it if
// needed.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root cannot be empty")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(absRoot, dirPerm); err != nil {
		return nil, fmt.Errorf("cannot create storage root %s: %w", absRoot, err)
	}
	return &Store{root: absRoot}, nil
}

// Root returns the store's root directory
func (s *Store) Root() string {
	return s.root
}

// NewID issues a fresh artifact identifier
func (s *Store) NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id is an identifier this store could have
// issued. Path helpers join the id into filenames under the root, so
// anything else (path separators, dot-dot, arbitrary strings) must be
// rejected before it reaches the filesystem.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// InputPath is where a request's uploaded document lands
func (s *Store) InputPath(id string) string {
	return filepath.Join(s.root, id+"_input.pdf")
}

// OutputPath is where a request's stamped document lands
func (s *Store) OutputPath(id string) string {
	return filepath.Join(s.root, id+"_output.pdf")
}

// ZipPath is where a batch request's bundle lands
func (s *Store) ZipPath(id string) string {
	return filepath.Join(s.root, "processed_pdfs_"+id+".zip")
}

// BatchDir is the per-batch working directory
func (s *Store) BatchDir(id string) string {
	return filepath.Join(s.root, "batch_"+id)
}

// CreateBatchDir creates and returns the per-batch working directory
func (s *Store) CreateBatchDir(id string) (string, error) {
	dir := s.BatchDir(id)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("cannot create batch directory %s: %w", dir, err)
	}
	return dir, nil
}

// SaveInput streams an uploaded document to the input path for the id
func (s *Store) SaveInput(id string, r io.Reader) (string, error) {
	path := s.InputPath(id)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cannot create input artifact: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("cannot write input artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("cannot close input artifact: %w", err)
	}
	return path, nil
}

// Remove deletes one artifact path, tolerating absence
func (s *Store) Remove(path string) {
	_ = os.Remove(path)
}

// Cleanup removes every artifact keyed by the identifier and reports how
// many items were removed. An unknown identifier yields 0, not an error;
// an identifier the store could not have issued removes nothing.
func (s *Store) Cleanup(id string) int {
	if !ValidID(id) {
		return 0
	}

	cleaned := 0
	for _, path := range []string{
		s.InputPath(id),
		s.OutputPath(id),
		s.ZipPath(id),
	} {
		if _, err := os.Stat(path); err == nil {
			if os.Remove(path) == nil {
				cleaned++
			}
		}
	}

	batchDir := s.BatchDir(id)
	if info, err := os.Stat(batchDir); err == nil && info.IsDir() {
		if os.RemoveAll(batchDir) == nil {
			cleaned++
		}
	}

	return cleaned
}

// Sweep clears every artifact under the root, best effort. Called at
// startup so leftovers from a previous run don't accumulate.
func (s *Store) Sweep() {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return
	}
	for _, entry := range entries {
		_ = os.RemoveAll(filepath.Join(s.root, entry.Name()))
	}
}
