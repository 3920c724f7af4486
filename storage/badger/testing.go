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


package badger

import "github.com/telepress/telepress/storage"

// NewMemoryRepositories creates in-memory article, author and category
// repositories for testing. Caller must close all repos and the backend
// when done.
func NewMemoryRepositories() (storage.ArticleRepository, storage.AuthorRepository, storage.CategoryRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	articleRepo, err := NewArticleRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	authorRepo, err := NewAuthorRepository(backend)
	if err != nil {
		articleRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	categoryRepo, err := NewCategoryRepository(backend)
	if err != nil {
		authorRepo.Close()
		articleRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	return articleRepo, authorRepo, categoryRepo, backend, nil
}
