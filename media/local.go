package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// LocalStore writes objects under a directory on the local filesystem and
// serves root-relative access paths.
type LocalStore struct {
	root         string
	publicPrefix string
}

// NewLocalStore creates a store rooted at dir. publicPrefix is prepended to
// access paths, e.g. "/media".
func NewLocalStore(dir, publicPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create store root: %w", err)
	}
	return &LocalStore{root: dir, publicPrefix: publicPrefix}, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("media: create object dir: %w", err)
	}

	tmp := dst + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("media: create object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("media: write object: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("media: close object: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("media: finalize object: %w", err)
	}
	return nil
}

func (s *LocalStore) AccessPath(key string) string {
	return path.Join("/", s.publicPrefix, key)
}
