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

package authors

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/telepress/telepress/core"
	"github.com/telepress/telepress/storage"
)

const (
	// RoleAuthor is the role assigned to every resolved identity.
	RoleAuthor = "author"

	// SystemAuthorName is the well-known identity returned when
	// resolution fails. It must satisfy the author-name invariants.
	SystemAuthorName = "Newsroom System"

	defaultDomain    = "telepress.news"
	defaultOpTimeout = 5 * time.Second
)

type cacheEntry struct {
	author   core.Author
	storedAt time.Time
}

// Resolver maps generated author names to persisted identities. Resolutions
// are cached per name for the process lifetime (or the configured TTL), and
// the whole resolve path runs under one mutex so two concurrent messages
// with the same new name cannot create duplicate identities.
type Resolver struct {
	repo      storage.AuthorRepository
	logger    *slog.Logger
	domain    string
	ttl       time.Duration
	opTimeout time.Duration
	now       func() time.Time

	mu     sync.Mutex
	cache  map[string]cacheEntry
	system *core.Author
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDomain sets the email domain for derived addresses.
func WithDomain(domain string) ResolverOption {
	return func(r *Resolver) {
		r.domain = domain
	}
}

// WithCacheTTL bounds how long a cached resolution is trusted. Zero (the
// default) caches for the process lifetime.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.ttl = ttl
	}
}

// WithTimeout bounds a single lookup/create round-trip.
func WithTimeout(timeout time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.opTimeout = timeout
	}
}

// WithResolverLogger sets the resolver logger.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver backed by repo.
func NewResolver(repo storage.AuthorRepository, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		repo:      repo,
		logger:    slog.Default().With("component", "author-resolver"),
		domain:    defaultDomain,
		opTimeout: defaultOpTimeout,
		now:       time.Now,
		cache:     make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps an author name to a persisted identity. Resolution never
// fails: any storage error yields the well-known system identity instead.
func (r *Resolver) Resolve(ctx context.Context, name string) core.Author {
	name = strings.TrimSpace(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.cache[name]; ok {
		if r.ttl == 0 || r.now().Sub(entry.storedAt) < r.ttl {
			return entry.author
		}
		delete(r.cache, name)
	}

	opCtx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	stored, err := r.repo.GetOrCreateAuthor(opCtx, &core.Author{
		Name:       name,
		Email:      DeriveEmail(name, r.domain),
		Role:       RoleAuthor,
		IsVerified: true,
	})
	if err != nil {
		r.logger.Warn("author resolution failed, using system identity",
			"name", name, "error", err)
		return r.systemIdentity(ctx)
	}

	r.cache[name] = cacheEntry{author: *stored, storedAt: r.now()}
	r.logger.Debug("author resolved", "name", name, "id", stored.Id)
	return *stored
}

// System returns the well-known fallback identity, creating it in the store
// on first use.
func (r *Resolver) System(ctx context.Context) core.Author {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.systemIdentity(ctx)
}

// systemIdentity must be called with the mutex held. The system author is
// persisted lazily; if even that write fails the unpersisted identity is
// returned so the caller can still proceed.
func (r *Resolver) systemIdentity(ctx context.Context) core.Author {
	if r.system != nil {
		return *r.system
	}

	sys := &core.Author{
		Name:       SystemAuthorName,
		Email:      DeriveEmail(SystemAuthorName, r.domain),
		Role:       RoleAuthor,
		IsVerified: true,
	}

	// The triggering context may already be expired; detach so the system
	// identity still gets its own bounded attempt.
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opTimeout)
	defer cancel()

	stored, err := r.repo.GetOrCreateAuthor(opCtx, sys)
	if err != nil {
		r.logger.Error("system identity creation failed", "error", err)
		return *sys
	}
	r.system = stored
	return *stored
}

// CacheSize reports the number of cached resolutions.
func (r *Resolver) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// DeriveEmail builds the deterministic address for an author name:
// lowercased, spaces become dots, everything else non-alphanumeric is
// dropped, with the fixed domain appended.
func DeriveEmail(name, domain string) string {
	var b strings.Builder
	lastDot := true // suppress a leading dot
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDot = false
		case r == ' ' && !lastDot:
			b.WriteRune('.')
			lastDot = true
		}
	}
	local := strings.TrimSuffix(b.String(), ".")
	return local + "@" + domain
}
