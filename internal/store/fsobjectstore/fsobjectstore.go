// Package fsobjectstore implements store.ObjectStore on the local
// filesystem, adapted from the teacher's own local-upload convention
// (UPLOAD_BASE directory, served back out as a public URL).
package fsobjectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists attachment bytes under a base directory and serves them
// back out under a configured public base URL.
type Store struct {
	BaseDir   string
	PublicURL string // e.g. "https://example.com/media"
}

// New creates the base directory if needed and returns a Store.
func New(baseDir, publicURL string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{BaseDir: baseDir, PublicURL: publicURL}, nil
}

// Upload writes data under key beneath BaseDir and returns its public URL.
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path := filepath.Join(s.BaseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return s.GetPublicURL(ctx, key)
}

// GetPublicURL builds the externally reachable URL for a previously
// uploaded key.
func (s *Store) GetPublicURL(ctx context.Context, key string) (string, error) {
	return fmt.Sprintf("%s/%s", s.PublicURL, key), nil
}
