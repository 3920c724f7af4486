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

package telepress

import (
	"log/slog"

	"github.com/telepress/telepress/storage"
	"github.com/telepress/telepress/storage/badger"
)

// Store bundles the primary document store: one BadgerDB backend and the
// article, author and category repositories on top of it.
type Store struct {
	backend    *badger.Backend
	articles   storage.ArticleRepository
	authors    storage.AuthorRepository
	categories storage.CategoryRepository
	logger     *slog.Logger
}

// StoreOption configures Open.
type StoreOption func(*storeOptions)

type storeOptions struct {
	inMemory bool
}

// WithInMemory opens a throwaway in-memory store, mainly for tests.
func WithInMemory() StoreOption {
	return func(o *storeOptions) {
		o.inMemory = true
	}
}

// Open opens the document store at filePath and wires up the repositories.
func Open(filePath string, opts ...StoreOption) (*Store, error) {
	options := &storeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	articles, err := badger.NewArticleRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	authors, err := badger.NewAuthorRepository(backend)
	if err != nil {
		articles.Close()
		backend.Close()
		return nil, err
	}

	categories, err := badger.NewCategoryRepository(backend)
	if err != nil {
		authors.Close()
		articles.Close()
		backend.Close()
		return nil, err
	}

	return &Store{
		backend:    backend,
		articles:   articles,
		authors:    authors,
		categories: categories,
		logger:     slog.Default(),
	}, nil
}

// Articles returns the article repository.
func (s *Store) Articles() storage.ArticleRepository {
	return s.articles
}

// Authors returns the author repository.
func (s *Store) Authors() storage.AuthorRepository {
	return s.authors
}

// Categories returns the category repository.
func (s *Store) Categories() storage.CategoryRepository {
	return s.categories
}

// Close closes the repositories and the backend.
func (s *Store) Close() error {
	if err := s.categories.Close(); err != nil {
		s.logger.Error("error closing category repository", "err", err)
		return err
	}
	if err := s.authors.Close(); err != nil {
		s.logger.Error("error closing author repository", "err", err)
		return err
	}
	if err := s.articles.Close(); err != nil {
		s.logger.Error("error closing article repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
