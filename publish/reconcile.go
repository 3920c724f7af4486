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

package publish

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/telepress/telepress/core"
	"github.com/telepress/telepress/storage"
)

// AuthorResolver maps a byline to a persisted identity.
type AuthorResolver interface {
	Resolve(ctx context.Context, name string) core.Author
}

// Announcer is notified of every article that reaches the primary store.
type Announcer interface {
	Announce(ctx context.Context, article *core.Article)
}

// Report summarizes one reconciliation run.
type Report struct {
	Pending    int // staged files found
	Imported   int // migrated into the primary store
	Duplicates int // already present, file removed
	Failed     int // left in place for the next run
}

// Reconciler migrates staged articles into the primary store. Runs are
// serialized by an internal mutex: a staged write is not idempotent against
// a concurrent run of itself, so only one scan may be in flight.
type Reconciler struct {
	articles   storage.ArticleRepository
	categories storage.CategoryRepository
	authors    AuthorResolver
	staging    storage.StagingStore
	announcer  Announcer
	logger     *slog.Logger

	mu sync.Mutex
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithAnnouncer notifies about every successfully imported article.
func WithAnnouncer(announcer Announcer) ReconcilerOption {
	return func(r *Reconciler) {
		r.announcer = announcer
	}
}

// WithReconcilerLogger sets the reconciler logger.
func WithReconcilerLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// NewReconciler creates a Reconciler.
func NewReconciler(articles storage.ArticleRepository, categories storage.CategoryRepository,
	authors AuthorResolver, staging storage.StagingStore, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		articles:   articles,
		categories: categories,
		authors:    authors,
		staging:    staging,
		logger:     slog.Default().With("component", "reconciler"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run scans the staging area and imports each staged article, deleting its
// file only after the primary write is confirmed. With dryRun set it only
// counts what is pending.
func (r *Reconciler) Run(ctx context.Context, dryRun bool) (Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	files, err := r.staging.List(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{Pending: len(files)}
	if dryRun {
		for _, f := range files {
			r.logger.Info("staged article pending",
				"file", f.Name, "title", f.Article.Content.Title,
				"category", f.Article.CategorySlug,
				"staged_at", f.Article.CreatedAt)
		}
		return report, nil
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		switch err := r.importOne(ctx, f.Article); {
		case err == nil:
			report.Imported++
		case errors.Is(err, storage.ErrDuplicateKey):
			// Already landed, e.g. a stale write after staging. The file
			// is redundant and safe to drop.
			report.Duplicates++
		default:
			r.logger.Error("staged article import failed, keeping file",
				"file", f.Name, "error", err)
			report.Failed++
			continue
		}
		if err := r.staging.Remove(ctx, f.Name); err != nil {
			r.logger.Error("staged file removal failed", "file", f.Name, "error", err)
		}
	}

	r.logger.Info("reconciliation finished",
		"pending", report.Pending, "imported", report.Imported,
		"duplicates", report.Duplicates, "failed", report.Failed)
	return report, nil
}

func (r *Reconciler) importOne(ctx context.Context, staged *core.StagedArticle) error {
	category, err := r.categories.FindCategoryBySlug(ctx, staged.CategorySlug)
	if err != nil {
		return err
	}
	author := r.authors.Resolve(ctx, staged.Content.AuthorName)

	article := &core.Article{
		SourceKey: staged.SourceKey,
		Title:     staged.Content.Title,
		Excerpt:   staged.Content.Excerpt,
		Content:   staged.Content.Body,
		Image: core.ArticleImage{
			URL:     staged.ImageURL,
			Alt:     staged.Content.Title,
			Caption: staged.Content.Title,
		},
		CategoryId:  category.Id,
		AuthorId:    author.Id,
		Status:      core.StatusPublished,
		PublishedAt: staged.CreatedAt,
		Tags:        staged.Content.Tags,
		Source:      core.SourceTelegram,
		Metadata: core.ArticleMetadata{
			TelegramSource: true,
			ImportedAt:     time.Now(),
		},
	}

	stored, err := r.articles.AddArticles(ctx, article)
	if err != nil {
		return err
	}
	r.logger.Info("staged article imported",
		"id", stored[0].Id, "category", staged.CategorySlug)
	if r.announcer != nil {
		r.announcer.Announce(ctx, stored[0])
	}
	return nil
}
