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

package enhance

import (
	"errors"
	"strings"
)

// Config holds configuration for the content enhancement service.
type Config struct {
	// Host is the base URL for the OpenAI-compatible chat API.
	// Example: "http://localhost:11434/v1" for a local server.
	// Empty disables the service; enhancement then always falls back.
	Host string

	// Model is the chat model identifier.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	Model string

	// Token is the API token. Local services that skip authentication
	// accept any non-empty value.
	Token string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the chat service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the chat model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	return &Config{
		Host:  "http://localhost:11434/v1",
		Model: "qwen2.5:3b",
		Token: "none",
	}
}

// NewConfig creates a Config with default values and applies the provided
// options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Enabled reports whether a service endpoint is configured at all.
func (c *Config) Enabled() bool {
	return c.Host != ""
}

// Normalize ensures the host is in the canonical form expected by
// OpenAI-compatible APIs, adding the /v1 suffix if missing.
func (c *Config) Normalize() {
	if c.Host == "" {
		return
	}
	c.Host = strings.TrimSuffix(c.Host, "/")
	if !strings.HasSuffix(c.Host, "/v1") {
		c.Host += "/v1"
	}
}

// Validate checks the configuration, normalizing it first. A disabled
// config (empty host) is valid.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return nil
	}
	if c.Model == "" {
		return errors.New("enhance config: Model is required when Host is set")
	}
	if c.Token == "" {
		return errors.New("enhance config: Token is required when Host is set")
	}
	return nil
}
