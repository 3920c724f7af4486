package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/telepress/telepress/core"
)

// EventNewArticle is the event type sent for every persisted article.
const EventNewArticle = "NEW_ARTICLE"

const defaultTimeout = 3 * time.Second

// Webhook announces persisted articles to a fixed endpoint with one
// best-effort POST per article. Failures are logged and never retried;
// notification can never fail a message.
type Webhook struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
	now      func() time.Time
}

// WebhookOption configures a Webhook.
type WebhookOption func(*Webhook)

// WithNotifyTimeout sets the per-call client timeout.
func WithNotifyTimeout(timeout time.Duration) WebhookOption {
	return func(w *Webhook) {
		w.client.Timeout = timeout
	}
}

// WithNotifyLogger sets the notifier logger.
func WithNotifyLogger(logger *slog.Logger) WebhookOption {
	return func(w *Webhook) {
		w.logger = logger
	}
}

// NewWebhook creates a notifier for the given endpoint.
func NewWebhook(endpoint string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
		logger:   slog.Default().With("component", "notifier"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type event struct {
	Type      string      `json:"type"`
	Article   articleView `json:"article"`
	Timestamp time.Time   `json:"timestamp"`
}

// articleView is the projection sent over the wire; internal references
// and metadata stay out of it.
type articleView struct {
	ID          core.ID   `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	ImageURL    string    `json:"imageUrl"`
	PublishedAt time.Time `json:"publishedAt"`
	Tags        []string  `json:"tags"`
	Source      string    `json:"source"`
}

// Announce posts a NEW_ARTICLE event. Any failure, including a non-2xx
// response, is logged and otherwise ignored.
func (w *Webhook) Announce(ctx context.Context, article *core.Article) {
	if w.endpoint == "" {
		return
	}

	payload, err := json.Marshal(event{
		Type: EventNewArticle,
		Article: articleView{
			ID:          article.Id,
			Title:       article.Title,
			Excerpt:     article.Excerpt,
			ImageURL:    article.Image.URL,
			PublishedAt: article.PublishedAt,
			Tags:        article.Tags,
			Source:      article.Source,
		},
		Timestamp: w.now(),
	})
	if err != nil {
		w.logger.Error("notification payload encoding failed", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		w.endpoint, bytes.NewReader(payload))
	if err != nil {
		w.logger.Error("notification request build failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Warn("notification delivery failed",
			"article_id", article.Id, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		w.logger.Warn("notification rejected",
			"article_id", article.Id, "status", resp.StatusCode)
		return
	}
	w.logger.Debug("article announced", "article_id", article.Id)
}
