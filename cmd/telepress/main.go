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

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/telepress/telepress"
	"github.com/telepress/telepress/authors"
	"github.com/telepress/telepress/channels"
	"github.com/telepress/telepress/core"
	"github.com/telepress/telepress/enhance"
	"github.com/telepress/telepress/media"
	"github.com/telepress/telepress/notify"
	"github.com/telepress/telepress/pipeline"
	"github.com/telepress/telepress/publish"
	"github.com/telepress/telepress/storage"
	"github.com/telepress/telepress/storage/staging"
)

func main() {
	app := &cli.App{
		Name:  "telepress",
		Usage: "Broadcast-channel to news-article ingestion pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Listen for channel posts and publish articles",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "channels",
						Aliases:  []string{"c"},
						Usage:    "Path to the channel map YAML file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "bot-token",
						Usage:   "Bot API token",
						EnvVars: []string{"TELEPRESS_BOT_TOKEN"},
					},
					&cli.StringFlag{
						Name:  "staging-dir",
						Usage: "Directory for staged articles",
						Value: "staging",
					},
					&cli.StringFlag{
						Name:  "media-dir",
						Usage: "Directory for locally stored media",
						Value: "public/media",
					},
					&cli.StringFlag{
						Name:  "media-prefix",
						Usage: "Public path prefix for locally stored media",
						Value: "media",
					},
					&cli.StringFlag{
						Name:    "s3-endpoint",
						Usage:   "S3-compatible endpoint; empty uses local media storage",
						EnvVars: []string{"TELEPRESS_S3_ENDPOINT"},
					},
					&cli.StringFlag{
						Name:  "s3-bucket",
						Usage: "S3 bucket for media",
						Value: "telepress-media",
					},
					&cli.StringFlag{
						Name:    "s3-access-key",
						Usage:   "S3 access key",
						EnvVars: []string{"TELEPRESS_S3_ACCESS_KEY"},
					},
					&cli.StringFlag{
						Name:    "s3-secret-key",
						Usage:   "S3 secret key",
						EnvVars: []string{"TELEPRESS_S3_SECRET_KEY"},
					},
					&cli.BoolFlag{
						Name:  "s3-ssl",
						Usage: "Use TLS for the S3 endpoint",
						Value: true,
					},
					&cli.StringFlag{
						Name:  "s3-public-base",
						Usage: "Public base URL for S3 media (e.g. a CDN origin)",
					},
					&cli.StringFlag{
						Name:    "llm-host",
						Usage:   "Enhancement service host URL; empty disables enhancement",
						EnvVars: []string{"TELEPRESS_LLM_HOST"},
					},
					&cli.StringFlag{
						Name:  "llm-model",
						Usage: "Enhancement model name",
						Value: "qwen2.5:3b",
					},
					&cli.StringFlag{
						Name:    "llm-token",
						Usage:   "Enhancement service API token",
						Value:   "none",
						EnvVars: []string{"TELEPRESS_LLM_TOKEN"},
					},
					&cli.StringFlag{
						Name:  "webhook",
						Usage: "Webhook endpoint for new-article events; empty disables",
						Value: "http://localhost:4000/api/webhooks/articles",
					},
					&cli.StringFlag{
						Name:  "author-domain",
						Usage: "Email domain for derived author addresses",
						Value: "telepress.news",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size (0 = half the CPUs)",
						Value: 0,
					},
					&cli.DurationFlag{
						Name:  "write-timeout",
						Usage: "Primary-store write deadline before staging",
						Value: 8 * time.Second,
					},
				},
			},
			{
				Name:   "reconcile",
				Usage:  "Migrate staged articles into the primary store",
				Action: reconcileCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "staging-dir",
						Usage: "Directory for staged articles",
						Value: "staging",
					},
					&cli.StringFlag{
						Name:  "author-domain",
						Usage: "Email domain for derived author addresses",
						Value: "telepress.news",
					},
					&cli.StringFlag{
						Name:  "webhook",
						Usage: "Webhook endpoint for new-article events; empty disables",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "List pending staged articles without importing",
					},
				},
			},
			{
				Name:   "seed-categories",
				Usage:  "Create the categories declared in the channel map file",
				Action: seedCategoriesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "channels",
						Aliases:  []string{"c"},
						Usage:    "Path to the channel map YAML file",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCommand(c *cli.Context) error {
	if c.String("bot-token") == "" {
		return fmt.Errorf("bot token is required (flag --bot-token or TELEPRESS_BOT_TOKEN)")
	}

	mapFile, err := channels.LoadMapFile(c.String("channels"))
	if err != nil {
		return err
	}
	channelMap, err := channels.NewMap(mapFile.Channels)
	if err != nil {
		return err
	}

	store, err := telepress.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	stagingStore, err := staging.NewStore(c.String("staging-dir"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := channels.NewBot(c.String("bot-token"))
	if err != nil {
		return err
	}

	objectStore, err := buildObjectStore(ctx, c)
	if err != nil {
		return err
	}
	mediaPipeline := media.NewPipeline(objectStore,
		media.WithFileResolver(bot.GetFileDirectURL))

	enhancer, err := enhance.NewEnhancer(enhance.NewConfig(
		enhance.WithHost(c.String("llm-host")),
		enhance.WithModel(c.String("llm-model")),
		enhance.WithToken(c.String("llm-token")),
	))
	if err != nil {
		return fmt.Errorf("failed to create enhancer: %w", err)
	}

	resolver := authors.NewResolver(store.Authors(),
		authors.WithDomain(c.String("author-domain")))
	publisher := publish.NewPublisher(store.Articles(), store.Categories(), stagingStore,
		publish.WithWriteTimeout(c.Duration("write-timeout")))

	var pipelineOpts []pipeline.Option
	if size := c.Int("pool-size"); size > 0 {
		pipelineOpts = append(pipelineOpts, pipeline.WithPoolSize(size))
	}
	if endpoint := c.String("webhook"); endpoint != "" {
		pipelineOpts = append(pipelineOpts, pipeline.WithAnnouncer(notify.NewWebhook(endpoint)))
	}

	proc, err := pipeline.NewPipeline(channelMap, mediaPipeline, enhancer,
		resolver, publisher, pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer proc.Release()

	listener := channels.NewListener(bot, channelMap, proc)

	slog.Info("telepress running",
		"db", c.String("db"), "channels", channelMap.Len(),
		"staging", c.String("staging-dir"))

	err = listener.Run(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Info("shutting down, draining in-flight messages")
		proc.Wait()
		return nil
	}
	return err
}

func buildObjectStore(ctx context.Context, c *cli.Context) (media.ObjectStore, error) {
	if endpoint := c.String("s3-endpoint"); endpoint != "" {
		return media.NewS3Store(ctx, media.S3Config{
			Endpoint:   endpoint,
			AccessKey:  c.String("s3-access-key"),
			SecretKey:  c.String("s3-secret-key"),
			Bucket:     c.String("s3-bucket"),
			UseSSL:     c.Bool("s3-ssl"),
			PublicBase: c.String("s3-public-base"),
		})
	}
	return media.NewLocalStore(c.String("media-dir"), c.String("media-prefix"))
}

func reconcileCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := telepress.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	stagingStore, err := staging.NewStore(c.String("staging-dir"))
	if err != nil {
		return err
	}

	resolver := authors.NewResolver(store.Authors(),
		authors.WithDomain(c.String("author-domain")))

	var opts []publish.ReconcilerOption
	if endpoint := c.String("webhook"); endpoint != "" {
		opts = append(opts, publish.WithAnnouncer(notify.NewWebhook(endpoint)))
	}
	reconciler := publish.NewReconciler(store.Articles(), store.Categories(), resolver,
		stagingStore, opts...)

	report, err := reconciler.Run(ctx, c.Bool("dry-run"))
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	if c.Bool("dry-run") {
		fmt.Fprintf(os.Stderr, "Pending staged articles: %d\n", report.Pending)
		return nil
	}
	fmt.Fprintf(os.Stderr, "Pending:    %d\n", report.Pending)
	fmt.Fprintf(os.Stderr, "Imported:   %d\n", report.Imported)
	fmt.Fprintf(os.Stderr, "Duplicates: %d\n", report.Duplicates)
	fmt.Fprintf(os.Stderr, "Failed:     %d\n", report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d staged articles could not be imported", report.Failed)
	}
	return nil
}

func seedCategoriesCommand(c *cli.Context) error {
	ctx := context.Background()

	mapFile, err := channels.LoadMapFile(c.String("channels"))
	if err != nil {
		return err
	}
	if len(mapFile.Categories) == 0 {
		return fmt.Errorf("no categories declared in %s", c.String("channels"))
	}

	store, err := telepress.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	created, existing := 0, 0
	for _, def := range mapFile.Categories {
		_, err := store.Categories().FindCategoryBySlug(ctx, def.Slug)
		if err == nil {
			existing++
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if _, err := store.Categories().AddCategories(ctx,
			&core.Category{Name: def.Name, Slug: def.Slug}); err != nil {
			return fmt.Errorf("failed to create category %q: %w", def.Slug, err)
		}
		created++
	}

	fmt.Fprintf(os.Stderr, "Categories created: %d, already present: %d\n", created, existing)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
