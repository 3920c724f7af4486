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


// Package storage provides the storage abstraction layer for telepress.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. The primary article store is backed by BadgerDB (see the
// badger subpackage); the staging subpackage provides the durable file-based
// fallback area used when primary persistence is unavailable.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to enforce abstraction and enable
// alternative backends:
//
//	repo, err := badger.NewArticleRepository(backend)  // returns storage.ArticleRepository
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support. The publisher relies on this to race primary writes against its
// persistence deadline.
package storage
