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

package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrUnavailable reports that the source media could not be fetched.
var ErrUnavailable = errors.New("media: source unavailable")

// maxDownloadBytes caps a single media download.
const maxDownloadBytes = 20 << 20

// Pipeline fetches a source image, normalizes it, and stores the result.
type Pipeline struct {
	store   ObjectStore
	client  *http.Client
	logger  *slog.Logger
	resolve func(fileID string) (string, error)
	tempDir string
	prefix  string
	now     func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(client *http.Client) PipelineOption {
	return func(p *Pipeline) {
		p.client = client
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithFileResolver sets a resolver that translates a transport file
// reference into a download URL before fetching. Without one, Process
// treats the media reference as a URL directly. The resolver runs inside
// Process, on the worker, never on the ingestion path.
func WithFileResolver(resolve func(fileID string) (string, error)) PipelineOption {
	return func(p *Pipeline) {
		p.resolve = resolve
	}
}

// WithTempDir sets the directory for in-flight downloads.
func WithTempDir(dir string) PipelineOption {
	return func(p *Pipeline) {
		p.tempDir = dir
	}
}

// WithKeyPrefix sets the object-key prefix, default "uploads".
func WithKeyPrefix(prefix string) PipelineOption {
	return func(p *Pipeline) {
		p.prefix = prefix
	}
}

// NewPipeline creates a media pipeline backed by store.
func NewPipeline(store ObjectStore, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		store:   store,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
		tempDir: os.TempDir(),
		prefix:  "uploads",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process downloads the image at mediaRef, fits it to the publishing
// dimensions, uploads it, and returns the public access path. The temp file
// is removed on every exit path.
func (p *Pipeline) Process(ctx context.Context, mediaRef string) (string, error) {
	if p.resolve != nil {
		url, err := p.resolve(mediaRef)
		if err != nil {
			return "", fmt.Errorf("%w: resolve %q: %v", ErrUnavailable, mediaRef, err)
		}
		mediaRef = url
	}

	tmpPath := filepath.Join(p.tempDir, uuid.NewString()+".img")
	if err := p.download(ctx, mediaRef, tmpPath); err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			p.logger.Warn("temp file cleanup failed", "path", tmpPath, "error", err)
		}
	}()

	raw, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("media: read temp file: %w", err)
	}

	fitted, err := fitJPEG(raw)
	if err != nil {
		return "", err
	}

	key := p.objectKey()
	if err := p.store.Put(ctx, key, bytes.NewReader(fitted),
		int64(len(fitted)), "image/jpeg"); err != nil {
		return "", err
	}

	url := p.store.AccessPath(key)
	p.logger.Debug("media processed", "key", key,
		"bytes_in", len(raw), "bytes_out", len(fitted))
	return url, nil
}

func (p *Pipeline) download(ctx context.Context, mediaRef, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaRef, nil)
	if err != nil {
		return fmt.Errorf("media: build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("media: create temp file: %w", err)
	}
	_, copyErr := io.Copy(f, io.LimitReader(resp.Body, maxDownloadBytes))
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(dst)
		if copyErr != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, copyErr)
		}
		return fmt.Errorf("media: close temp file: %w", closeErr)
	}
	return nil
}

func (p *Pipeline) objectKey() string {
	t := p.now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s.jpg", p.prefix, t.Year(), t.Month(), uuid.NewString())
}
