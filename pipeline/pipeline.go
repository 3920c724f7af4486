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

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/telepress/telepress/channels"
	"github.com/telepress/telepress/core"
	"github.com/telepress/telepress/publish"
)

// MediaProcessor turns a media reference into a stored image URL.
type MediaProcessor interface {
	Process(ctx context.Context, mediaRef string) (string, error)
}

// Enhancer produces publishable content from a caption, reporting which
// fallback strategies were applied.
type Enhancer interface {
	Enhance(ctx context.Context, caption, categorySlug string) (core.EnhancedContent, []string)
}

// AuthorResolver maps a byline to a persisted identity.
type AuthorResolver interface {
	Resolve(ctx context.Context, name string) core.Author
}

// Persister writes finished articles with a staged fallback.
type Persister interface {
	AlreadyImported(ctx context.Context, key core.ID) (bool, error)
	Publish(ctx context.Context, in publish.Input) (publish.Result, error)
}

// Announcer is notified of every persisted article.
type Announcer interface {
	Announce(ctx context.Context, article *core.Article)
}

// Pipeline runs the per-message stage sequence on a worker pool: media,
// enhancement, author resolution, persistence, notification. Each message
// is an isolated unit of work ending in exactly one Outcome.
type Pipeline struct {
	channels  *channels.Map
	media     MediaProcessor
	enhancer  Enhancer
	authors   AuthorResolver
	persister Persister
	announcer Announcer
	onOutcome func(Outcome)
	pool      *ants.Pool
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithAnnouncer enables best-effort notification of persisted articles.
func WithAnnouncer(announcer Announcer) Option {
	return func(p *Pipeline) error {
		p.announcer = announcer
		return nil
	}
}

// WithOutcomeHandler registers a callback invoked with every Outcome,
// after logging. Useful for metrics and tests.
func WithOutcomeHandler(fn func(Outcome)) Option {
	return func(p *Pipeline) error {
		p.onOutcome = fn
		return nil
	}
}

// NewPipeline creates a processing pipeline.
func NewPipeline(
	channelMap *channels.Map,
	media MediaProcessor,
	enhancer Enhancer,
	authors AuthorResolver,
	persister Persister,
	opts ...Option,
) (*Pipeline, error) {
	if channelMap == nil {
		return nil, ErrChannelMapRequired
	}
	if media == nil {
		return nil, ErrMediaPipelineRequired
	}
	if enhancer == nil {
		return nil, ErrEnhancerRequired
	}
	if authors == nil {
		return nil, ErrAuthorResolverRequired
	}
	if persister == nil {
		return nil, ErrPersisterRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		channels:  channelMap,
		media:     media,
		enhancer:  enhancer,
		authors:   authors,
		persister: persister,
		pool:      pool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Dispatch submits a message for asynchronous processing. It returns
// immediately; the outcome is logged and handed to the outcome handler.
func (p *Pipeline) Dispatch(msg core.IncomingMessage) {
	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		outcome := p.process(context.Background(), msg)
		p.report(outcome)
	})
	if err != nil {
		p.wg.Done()
		p.logger.Error("worker pool rejected message",
			"channel", msg.ChannelKey, "message_id", msg.MessageID, "err", err)
	}
}

// Wait blocks until all dispatched messages have finished processing.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Release releases the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// process runs the stage sequence for one message. It never returns an
// error; every failure maps to a terminal Outcome.
func (p *Pipeline) process(ctx context.Context, msg core.IncomingMessage) Outcome {
	outcome := Outcome{
		ChannelKey: msg.ChannelKey,
		MessageID:  msg.MessageID,
	}

	slug, ok := p.channels.Lookup(msg.ChannelKey)
	if !ok {
		outcome.State = StateRejected
		outcome.Reason = "channel not mapped"
		return outcome
	}
	outcome.Category = slug

	sourceKey := core.SourceKey(msg.ChannelKey, msg.MessageID)
	seen, err := p.persister.AlreadyImported(ctx, sourceKey)
	if err != nil {
		// The duplicate check is advisory; the source-key index still
		// rejects a duplicate at write time.
		p.logger.Warn("duplicate check failed, continuing",
			"channel", msg.ChannelKey, "message_id", msg.MessageID, "err", err)
	}
	if seen {
		outcome.State = StateRejected
		outcome.Reason = "duplicate delivery"
		return outcome
	}

	imageURL, err := p.media.Process(ctx, msg.MediaRef)
	if err != nil {
		outcome.State = StateDropped
		outcome.Reason = "media: " + err.Error()
		return outcome
	}
	p.logger.Debug("media acquired",
		"channel", msg.ChannelKey, "message_id", msg.MessageID, "url", imageURL)

	content, fallbacks := p.enhancer.Enhance(ctx, msg.CaptionText, slug)
	outcome.Fallbacks = fallbacks
	p.logger.Debug("content enhanced",
		"channel", msg.ChannelKey, "message_id", msg.MessageID,
		"title", content.Title, "fallbacks", fallbacks)

	author := p.authors.Resolve(ctx, content.AuthorName)

	result, err := p.persister.Publish(ctx, publish.Input{
		Content:      content,
		ImageURL:     imageURL,
		CategorySlug: slug,
		Author:       author,
		SourceKey:    sourceKey,
	})
	switch {
	case errors.Is(err, core.ErrDuplicateArticle):
		outcome.State = StateRejected
		outcome.Reason = "duplicate delivery"
	case errors.Is(err, core.ErrCategoryNotFound):
		outcome.State = StateDropped
		outcome.Reason = "category not found: " + slug
	case err != nil:
		outcome.State = StateDropped
		outcome.Reason = "persistence: " + err.Error()
	case result.Article != nil:
		outcome.State = StatePersisted
		outcome.ArticleID = result.Article.Id
		if p.announcer != nil {
			p.announcer.Announce(ctx, result.Article)
		}
	default:
		outcome.State = StateStaged
		outcome.StagedName = result.StagedName
	}
	return outcome
}

func (p *Pipeline) report(outcome Outcome) {
	switch outcome.State {
	case StatePersisted:
		p.logger.Info("message persisted",
			"channel", outcome.ChannelKey, "message_id", outcome.MessageID,
			"article_id", outcome.ArticleID, "category", outcome.Category,
			"fallbacks", outcome.Fallbacks)
	case StateStaged:
		p.logger.Info("message staged",
			"channel", outcome.ChannelKey, "message_id", outcome.MessageID,
			"file", outcome.StagedName, "category", outcome.Category,
			"fallbacks", outcome.Fallbacks)
	case StateDropped:
		p.logger.Error("message dropped",
			"channel", outcome.ChannelKey, "message_id", outcome.MessageID,
			"reason", outcome.Reason)
	case StateRejected:
		p.logger.Debug("message rejected",
			"channel", outcome.ChannelKey, "message_id", outcome.MessageID,
			"reason", outcome.Reason)
	}
	if p.onOutcome != nil {
		p.onOutcome(outcome)
	}
}
