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


package core

import (
	"fmt"
	"unicode/utf8"
)

// Field limits for EnhancedContent.
const (
	MaxTitleLen      = 100
	MaxExcerptLen    = 300
	MinAuthorNameLen = 4
	MaxAuthorNameLen = 50
	MaxTags          = 5
)

// ValidateEnhancedContent validates EnhancedContent according to domain rules.
//
// Validation rules:
//   - Title must be non-empty and at most MaxTitleLen characters
//   - Excerpt must be non-empty and at most MaxExcerptLen characters
//   - Body must be non-empty
//   - AuthorName must be MinAuthorNameLen-MaxAuthorNameLen characters
//   - Tags may hold at most MaxTags entries
//
// Callers that receive an error here are expected to repair the offending
// fields individually (see ValidTitle, ValidExcerpt, etc.), not discard the
// whole value.
func ValidateEnhancedContent(content *EnhancedContent) error {
	if content == nil {
		return fmt.Errorf("%w: content is nil", ErrInvalidContent)
	}

	if err := ValidTitle(content.Title); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContent, err)
	}
	if err := ValidExcerpt(content.Excerpt); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContent, err)
	}
	if err := ValidBody(content.Body); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContent, err)
	}
	if err := ValidAuthorName(content.AuthorName); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContent, err)
	}
	if err := ValidTags(content.Tags); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContent, err)
	}

	return nil
}

// ValidTitle checks the title length invariant.
func ValidTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("%w: %d characters, max %d", ErrTitleTooLong, utf8.RuneCountInString(title), MaxTitleLen)
	}
	return nil
}

// ValidExcerpt checks the excerpt length invariant.
func ValidExcerpt(excerpt string) error {
	if excerpt == "" {
		return ErrEmptyExcerpt
	}
	if utf8.RuneCountInString(excerpt) > MaxExcerptLen {
		return fmt.Errorf("%w: %d characters, max %d", ErrExcerptTooLong, utf8.RuneCountInString(excerpt), MaxExcerptLen)
	}
	return nil
}

// ValidBody checks that the body is non-empty.
func ValidBody(body string) error {
	if body == "" {
		return ErrEmptyBody
	}
	return nil
}

// ValidAuthorName checks the author name length invariant.
func ValidAuthorName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinAuthorNameLen || n > MaxAuthorNameLen {
		return fmt.Errorf("%w: got %d", ErrInvalidAuthorName, n)
	}
	return nil
}

// ValidTags checks the tag count invariant. Empty tag lists are valid.
func ValidTags(tags []string) error {
	if len(tags) > MaxTags {
		return fmt.Errorf("%w: %d tags, max %d", ErrTooManyTags, len(tags), MaxTags)
	}
	return nil
}
