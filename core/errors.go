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

import "errors"

// Domain validation errors
var (
	// ErrInvalidContent indicates EnhancedContent failed validation.
	ErrInvalidContent = errors.New("invalid enhanced content")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrTitleTooLong indicates the Title exceeds MaxTitleLen.
	ErrTitleTooLong = errors.New("title too long")

	// ErrEmptyExcerpt indicates the Excerpt field is empty.
	ErrEmptyExcerpt = errors.New("excerpt cannot be empty")

	// ErrExcerptTooLong indicates the Excerpt exceeds MaxExcerptLen.
	ErrExcerptTooLong = errors.New("excerpt too long")

	// ErrEmptyBody indicates the Body field is empty.
	ErrEmptyBody = errors.New("body cannot be empty")

	// ErrInvalidAuthorName indicates the AuthorName is outside 4-50 characters.
	ErrInvalidAuthorName = errors.New("author name must be 4-50 characters")

	// ErrTooManyTags indicates more than MaxTags tags were supplied.
	ErrTooManyTags = errors.New("too many tags")
)

// Pipeline outcome errors
var (
	// ErrChannelNotMapped indicates the source channel has no category mapping.
	ErrChannelNotMapped = errors.New("channel not mapped")

	// ErrNoMediaOrCaption indicates the message lacks an image or caption text.
	ErrNoMediaOrCaption = errors.New("message has no media or caption")

	// ErrCategoryNotFound indicates the mapped category does not exist in the store.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrDuplicateArticle indicates an article already exists for the message's source key.
	ErrDuplicateArticle = errors.New("article already exists for source key")
)
