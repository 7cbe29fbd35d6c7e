// Package keystore loads the API signer private key from secured storage.
//
// The key is read on every call and never cached; callers zero the returned
// bytes once parsed.
package keystore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
)

// ErrKeyUnavailable is returned when key material is missing, unreadable or
// malformed.
var ErrKeyUnavailable = errors.New("key unavailable")

// Source provides PEM-encoded private key material.
type Source interface {
	// Load returns the PEM bytes. Errors wrap ErrKeyUnavailable.
	Load(ctx context.Context) ([]byte, error)

	// String describes the source without revealing secrets.
	String() string
}

// FileSource reads the key from a local file.
type FileSource struct {
	path   string
	logger hclog.Logger
}

// Compile-time check that FileSource implements Source.
var _ Source = (*FileSource)(nil)

// NewFileSource returns a Source reading path.
func NewFileSource(path string, logger hclog.Logger) *FileSource {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FileSource{path: path, logger: logger}
}

// Load reads the key file. A done ctx returns ctx.Err() unwrapped.
func (s *FileSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.path == "" {
		return nil, fmt.Errorf("%w: key path is empty", ErrKeyUnavailable)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read key file: %w", ErrKeyUnavailable, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: key file %s is empty", ErrKeyUnavailable, s.path)
	}
	s.logger.Debug("loaded signing key", "source", s.String())
	return data, nil
}

func (s *FileSource) String() string {
	return "file:" + s.path
}
