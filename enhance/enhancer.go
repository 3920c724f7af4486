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
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/telepress/telepress/core"
)

// Enhancer turns a raw caption into publishable EnhancedContent using an
// OpenAI-compatible chat service, degrading to deterministic caption-derived
// content whenever the service cannot deliver. It never fails a message.
type Enhancer struct {
	client llms.Model
	logger *slog.Logger
}

// serviceResponse matches the JSON object the model is instructed to emit.
type serviceResponse struct {
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	AuthorName string   `json:"authorName"`
	Tags       []string `json:"tags"`
}

var errNoChoices = errors.New("enhance: no choices returned from model")

// NewEnhancer creates an Enhancer from config. A config without a host
// yields an enhancer that always produces fallback content.
func NewEnhancer(config *Config) (*Enhancer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Enhancer{
		logger: slog.Default().With("component", "enhancer"),
	}
	if !config.Enabled() {
		return e, nil
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}
	e.client = client
	return e, nil
}

// Enhance produces EnhancedContent for a caption in the given category. The
// returned strategy list names every fallback that was applied; an empty
// list means the service response was used verbatim. Enhance never returns
// an error: service failure is a designed degradation, not a pipeline
// failure.
func (e *Enhancer) Enhance(ctx context.Context, caption, categorySlug string) (core.EnhancedContent, []string) {
	if e.client == nil {
		e.logger.Info("enhancement service disabled, generating content from caption",
			"category", categorySlug)
		return fallbackContent(caption), []string{FallbackFull}
	}

	response, err := e.generate(ctx, caption, categorySlug)
	if err != nil {
		e.logger.Warn("enhancement service unavailable, generating content from caption",
			"category", categorySlug, "error", err)
		return fallbackContent(caption), []string{FallbackFull}
	}

	return e.repairFields(caption, response)
}

// generate runs the chat call, retrying the parse up to 3 times in case of
// malformed JSON. Transport errors are not retried here; the caller falls
// back immediately.
func (e *Enhancer) generate(ctx context.Context, caption, categorySlug string) (serviceResponse, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt(categorySlug)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(caption),
			},
		},
	}

	var result serviceResponse
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content,
			llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			return serviceResponse{}, err
		}
		if len(response.Choices) < 1 {
			return serviceResponse{}, errNoChoices
		}

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(response.Choices[0].Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing enhancement response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		return result, nil
	}
	return serviceResponse{}, lastErr
}

// repairFields validates each field independently and swaps in the
// caption-derived fallback for the ones that fail, never rejecting the
// response wholesale.
func (e *Enhancer) repairFields(caption string, response serviceResponse) (core.EnhancedContent, []string) {
	content := core.EnhancedContent{
		Title:      strings.TrimSpace(response.Title),
		Excerpt:    strings.TrimSpace(response.Excerpt),
		Body:       strings.TrimSpace(response.Content),
		AuthorName: strings.TrimSpace(response.AuthorName),
		Tags:       sanitizeTags(response.Tags),
	}

	var applied []string
	if err := core.ValidTitle(content.Title); err != nil {
		content.Title = fallbackTitle(caption)
		applied = append(applied, FallbackTitle)
	}
	if err := core.ValidExcerpt(content.Excerpt); err != nil {
		content.Excerpt = fallbackExcerpt(caption)
		applied = append(applied, FallbackExcerpt)
	}
	if err := core.ValidBody(content.Body); err != nil {
		content.Body = fallbackBody(caption)
		applied = append(applied, FallbackBody)
	}
	if err := core.ValidAuthorName(content.AuthorName); err != nil {
		content.AuthorName = randomAuthor()
		applied = append(applied, FallbackAuthorName)
	}
	if err := core.ValidTags(content.Tags); err != nil {
		content.Tags = captionTags(caption)
		applied = append(applied, FallbackTags)
	}

	if len(applied) > 0 {
		e.logger.Info("enhancement fields repaired", "fields", applied)
	}
	return content, applied
}

// maxTagLen caps a single service-provided tag entry.
const maxTagLen = 50

// sanitizeTags trims service-provided tag entries and drops empty or
// oversized ones before the count check.
func sanitizeTags(tags []string) []string {
	kept := tags[:0:0]
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || utf8.RuneCountInString(tag) > maxTagLen {
			continue
		}
		kept = append(kept, tag)
	}
	return kept
}
