// Package filesystem writes artifact files under a local output root.
package filesystem

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store writes artifacts into date directories below Root.
// It implements pipeline.ArtifactSink.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore creates a Store rooted at root.
func NewStore(root string, logger *slog.Logger) *Store {
	return &Store{root: root, logger: logger}
}

// Root returns the output root directory.
func (s *Store) Root() string { return s.root }

// Prepare creates the date directory if it does not exist.
func (s *Store) Prepare(_ context.Context, dir string) error {
	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// Put writes data to dir/name. The file is written to a temporary name in the
// same directory and renamed, so readers never see a partial artifact.
func (s *Store) Put(ctx context.Context, dir, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := filepath.Join(s.root, dir, name)

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}

	s.logger.Debug("artifact written", "path", target, "bytes", len(data))
	return nil
}
