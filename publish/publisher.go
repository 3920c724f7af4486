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
	"fmt"
	"log/slog"
	"time"

	"github.com/telepress/telepress/core"
	"github.com/telepress/telepress/storage"
)

const defaultWriteTimeout = 8 * time.Second

// Input carries everything needed to persist one enhanced message.
type Input struct {
	Content      core.EnhancedContent
	ImageURL     string
	CategorySlug string
	Author       core.Author
	SourceKey    core.ID
}

// Result reports where the article ended up. Exactly one of Article and
// StagedName is set.
type Result struct {
	Article    *core.Article
	StagedName string
}

// Publisher writes finished articles to the primary store, racing the write
// against a fixed timeout. When the timer wins, the same content is
// serialized to the durable staging area instead, so a successfully
// enhanced message always leaves exactly one record behind.
type Publisher struct {
	articles   storage.ArticleRepository
	categories storage.CategoryRepository
	staging    storage.StagingStore
	logger     *slog.Logger
	timeout    time.Duration
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithWriteTimeout sets the primary-store write deadline.
func WithWriteTimeout(timeout time.Duration) PublisherOption {
	return func(p *Publisher) {
		p.timeout = timeout
	}
}

// WithPublisherLogger sets the publisher logger.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a Publisher.
func NewPublisher(articles storage.ArticleRepository, categories storage.CategoryRepository,
	staging storage.StagingStore, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		articles:   articles,
		categories: categories,
		staging:    staging,
		logger:     slog.Default().With("component", "publisher"),
		timeout:    defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AlreadyImported reports whether an article for the source key exists in
// the primary store. Lookup errors are returned so the caller can decide;
// a missing article is not an error.
func (p *Publisher) AlreadyImported(ctx context.Context, key core.ID) (bool, error) {
	_, err := p.articles.GetArticleBySourceKey(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Publish persists the enhanced content. A missing category is the one
// unrecoverable case and returns core.ErrCategoryNotFound; a duplicate
// source key returns core.ErrDuplicateArticle; a write that loses the race
// against the timeout, or fails outright, falls back to the staging area.
func (p *Publisher) Publish(ctx context.Context, in Input) (Result, error) {
	category, err := p.categories.FindCategoryBySlug(ctx, in.CategorySlug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Result{}, fmt.Errorf("%w: %q", core.ErrCategoryNotFound, in.CategorySlug)
		}
		// Store unhealthy; the slug is still recorded with the staged copy.
		p.logger.Warn("category lookup failed, staging article",
			"slug", in.CategorySlug, "error", err)
		return p.stage(ctx, in)
	}

	now := time.Now()
	article := &core.Article{
		SourceKey: in.SourceKey,
		Title:     in.Content.Title,
		Excerpt:   in.Content.Excerpt,
		Content:   in.Content.Body,
		Image: core.ArticleImage{
			URL:     in.ImageURL,
			Alt:     in.Content.Title,
			Caption: in.Content.Title,
		},
		CategoryId:  category.Id,
		AuthorId:    in.Author.Id,
		Status:      core.StatusPublished,
		PublishedAt: now,
		Tags:        in.Content.Tags,
		Source:      core.SourceTelegram,
		Metadata: core.ArticleMetadata{
			TelegramSource: true,
			ImportedAt:     now,
		},
	}

	// The write is not cancelled when the timer fires; a late result is
	// discarded and the source-key index keeps a stale landing from
	// duplicating the staged copy at reconcile time.
	type writeResult struct {
		stored []*core.Article
		err    error
	}
	done := make(chan writeResult, 1)
	go func() {
		stored, err := p.articles.AddArticles(context.WithoutCancel(ctx), article)
		done <- writeResult{stored: stored, err: err}
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, storage.ErrDuplicateKey) {
				return Result{}, fmt.Errorf("%w: source key %d",
					core.ErrDuplicateArticle, in.SourceKey)
			}
			p.logger.Warn("primary write failed, staging article",
				"source_key", in.SourceKey, "error", res.err)
			return p.stage(ctx, in)
		}
		p.logger.Info("article persisted",
			"id", res.stored[0].Id, "category", in.CategorySlug)
		return Result{Article: res.stored[0]}, nil
	case <-timer.C:
		p.logger.Warn("primary write timed out, staging article",
			"source_key", in.SourceKey, "timeout", p.timeout)
		return p.stage(ctx, in)
	}
}

func (p *Publisher) stage(ctx context.Context, in Input) (Result, error) {
	name, err := p.staging.Stage(ctx, &core.StagedArticle{
		Content:      in.Content,
		ImageURL:     in.ImageURL,
		CategorySlug: in.CategorySlug,
		SourceKey:    in.SourceKey,
	})
	if err != nil {
		return Result{}, fmt.Errorf("publish: staging fallback failed: %w", err)
	}
	return Result{StagedName: name}, nil
}
