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

package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/telepress/telepress/core"
)

// ErrTransportClosed reports that the update stream ended without the
// listener being asked to stop.
var ErrTransportClosed = errors.New("channels: update transport closed")

// botClientTimeout bounds every bot API call, including file lookups.
const botClientTimeout = 30 * time.Second

// Sink receives accepted messages. Dispatch must not block on downstream
// processing; the listener calls it inline from the update loop.
type Sink interface {
	Dispatch(msg core.IncomingMessage)
}

// NewBot authenticates against the bot API using a timeout-bounded HTTP
// client, so no API call can stall indefinitely.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint,
		&http.Client{Timeout: botClientTimeout})
	if err != nil {
		return nil, fmt.Errorf("channels: authenticate bot: %w", err)
	}
	return bot, nil
}

// Listener consumes channel posts over long polling, filters them against
// the channel map, and hands accepted messages to the sink. The update loop
// itself does no network I/O beyond the poll: accepted messages carry the
// photo file id as MediaRef, and the download URL is resolved downstream.
type Listener struct {
	bot      *tgbotapi.BotAPI
	channels *Map
	sink     Sink
	logger   *slog.Logger

	pollTimeout int
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithListenerLogger sets the logger used by the listener.
func WithListenerLogger(logger *slog.Logger) ListenerOption {
	return func(l *Listener) {
		l.logger = logger
	}
}

// WithPollTimeout sets the long-poll timeout in seconds.
func WithPollTimeout(seconds int) ListenerOption {
	return func(l *Listener) {
		l.pollTimeout = seconds
	}
}

// NewListener returns a listener bound to the given bot, channel map and
// sink.
func NewListener(bot *tgbotapi.BotAPI, channels *Map, sink Sink,
	opts ...ListenerOption) *Listener {
	l := &Listener{
		bot:         bot,
		channels:    channels,
		sink:        sink,
		logger:      slog.Default(),
		pollTimeout: 30,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run polls for updates until ctx is cancelled. A closed update stream is
// reported as ErrTransportClosed so the caller can decide whether to
// reconnect.
func (l *Listener) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = l.pollTimeout
	cfg.AllowedUpdates = []string{"channel_post"}
	updates := l.bot.GetUpdatesChan(cfg)

	l.logger.Info("listener started", "account", l.bot.Self.UserName,
		"channels", l.channels.Len())

	for {
		select {
		case <-ctx.Done():
			l.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return ErrTransportClosed
			}
			l.handleUpdate(update)
		}
	}
}

// handleUpdate filters one update. Rejections leave only a debug trace;
// they are routine, not errors.
func (l *Listener) handleUpdate(update tgbotapi.Update) {
	post := update.ChannelPost
	if post == nil {
		post = update.Message
	}
	if post == nil || post.Chat == nil {
		return
	}

	key, ok := l.matchChannel(post.Chat)
	if !ok {
		l.logger.Debug("post from unmapped channel skipped",
			"chat_id", post.Chat.ID, "handle", post.Chat.UserName)
		return
	}
	if len(post.Photo) == 0 {
		l.logger.Debug("post without photo skipped",
			"channel", key, "message_id", post.MessageID)
		return
	}
	if strings.TrimSpace(post.Caption) == "" {
		l.logger.Debug("post without caption skipped",
			"channel", key, "message_id", post.MessageID)
		return
	}

	l.sink.Dispatch(core.IncomingMessage{
		ChannelKey:  key,
		MessageID:   post.MessageID,
		CaptionText: post.Caption,
		MediaRef:    largestPhoto(post.Photo).FileID,
		ReceivedAt:  time.Now(),
	})
}

// matchChannel resolves the chat against the channel map, preferring the
// numeric id as the stable message key.
func (l *Listener) matchChannel(chat *tgbotapi.Chat) (string, bool) {
	id := strconv.FormatInt(chat.ID, 10)
	if _, ok := l.channels.Lookup(id); ok {
		return id, true
	}
	if chat.UserName != "" {
		handle := NormalizeKey(chat.UserName)
		if _, ok := l.channels.Lookup(handle); ok {
			return handle, true
		}
	}
	return "", false
}

func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}
