package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// ImageStore keeps uploaded profile images on local disk. Writes land in a
// staging subdirectory first; only a successful sign-up promotes the file to
// its final location, so a rejected attempt never leaves a referenced file
// behind. Orphaned staging files are a garbage-collection concern outside
// this store.
type ImageStore struct {
	dir     string
	staging string
}

// NewImageStore creates the store directories if needed.
func NewImageStore(dir string) (*ImageStore, error) {
	staging := filepath.Join(dir, "staging")
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image store directories: %w", err)
	}
	return &ImageStore{dir: dir, staging: staging}, nil
}

// Stage writes the upload under the staging directory.
func (s *ImageStore) Stage(name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(s.staging, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to stage image %s: %w", name, err)
	}
	return nil
}

// Promote moves a staged file into its final location.
func (s *ImageStore) Promote(name string) error {
	if err := os.Rename(filepath.Join(s.staging, name), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("failed to promote image %s: %w", name, err)
	}
	return nil
}

// Discard removes a staged file. Best effort: a missing file is not an error.
func (s *ImageStore) Discard(name string) error {
	err := os.Remove(filepath.Join(s.staging, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to discard staged image %s: %w", name, err)
	}
	return nil
}

// Path returns the final on-disk path for a promoted file.
func (s *ImageStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}
