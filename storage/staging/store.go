// Copyright 2026 Telepress Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package staging implements the durable file-based fallback store for
// articles that could not be written to the primary store. Each staged
// article is one JSON file named by a monotonically increasing timestamp,
// so directory order is creation order and names never collide.
package staging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/telepress/telepress/core"
	"github.com/telepress/telepress/storage"
)

const fileExt = ".json"

// Store implements storage.StagingStore on a local directory.
type Store struct {
	dir    string
	logger *slog.Logger

	mu       sync.Mutex
	lastName int64 // last issued timestamp, nanoseconds
}

var _ storage.StagingStore = (*Store)(nil)

// NewStore creates a staging store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("staging: directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("staging: create directory: %w", err)
	}
	return &Store{
		dir:    dir,
		logger: slog.Default().With("component", "staging"),
	}, nil
}

// Stage writes a staged article as a JSON file and returns the file name.
func (s *Store) Stage(ctx context.Context, staged *core.StagedArticle) (string, error) {
	if staged == nil {
		return "", fmt.Errorf("staging: %w: staged article is nil", storage.ErrSerializationFailed)
	}

	if staged.CreatedAt.IsZero() {
		staged.CreatedAt = time.Now().UTC()
	}
	if staged.Status == "" {
		staged.Status = core.StatusPendingImport
	}

	data, err := json.MarshalIndent(staged, "", "  ")
	if err != nil {
		return "", fmt.Errorf("staging: %w: %w", storage.ErrSerializationFailed, err)
	}

	name := s.nextName()
	path := filepath.Join(s.dir, name)

	// Write to a temp name first so List never observes a partial file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("staging: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("staging: rename: %w", err)
	}

	s.logger.Info("article staged",
		"file", name,
		"category", staged.CategorySlug,
		"title", staged.Content.Title)
	return name, nil
}

// List returns all staged articles in creation order.
// Files that cannot be read or parsed are skipped with a warning.
func (s *Store) List(ctx context.Context) ([]storage.StagedFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("staging: read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names) // timestamp names sort chronologically

	files := make([]storage.StagedFile, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("skipping unreadable staged file", "file", name, "err", err)
			continue
		}
		var staged core.StagedArticle
		if err := json.Unmarshal(data, &staged); err != nil {
			s.logger.Warn("skipping malformed staged file", "file", name, "err", err)
			continue
		}
		files = append(files, storage.StagedFile{Name: name, Article: &staged})
	}
	return files, nil
}

// Remove deletes a staged file by name.
func (s *Store) Remove(ctx context.Context, name string) error {
	// Reject traversal; names are store-issued but callers may pass anything.
	if name != filepath.Base(name) {
		return fmt.Errorf("staging: invalid file name %q", name)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("staging: remove: %w", err)
	}
	return nil
}

// nextName issues a unique, monotonically increasing file name.
// Two stages within the same nanosecond are forced apart.
func (s *Store) nextName() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().UnixNano()
	if now <= s.lastName {
		now = s.lastName + 1
	}
	s.lastName = now
	return fmt.Sprintf("%020d%s", now, fileExt)
}
