package storage

import (
	"context"

	"github.com/telepress/telepress/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ArticleRepository provides operations for managing published articles.
type ArticleRepository interface {
	Repository
	// AddArticles adds one or more articles to storage.
	// For articles with ID=0, generates new IDs from sequence.
	// Sets InsertedAt timestamp if not already set.
	// Returns ErrDuplicateKey if an article already exists for a source key.
	AddArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error)

	// GetArticle retrieves a single article by ID.
	// Returns ErrNotFound if the article doesn't exist.
	GetArticle(ctx context.Context, id core.ID) (*core.Article, error)

	// GetArticleBySourceKey retrieves the article produced for a channel message,
	// if any. Returns ErrNotFound if no article exists for the key.
	GetArticleBySourceKey(ctx context.Context, key core.ID) (*core.Article, error)

	// GetRecentArticles retrieves the N most recently published articles,
	// most recent first.
	GetRecentArticles(ctx context.Context, limit int) ([]*core.Article, error)

	// DeleteArticles removes articles by their IDs.
	// Returns ErrNotFound if any article doesn't exist.
	DeleteArticles(ctx context.Context, ids ...core.ID) error
}

// AuthorRepository provides operations for managing author identities.
type AuthorRepository interface {
	Repository
	// AddAuthors adds one or more authors to storage.
	// For authors with ID=0, generates content-based IDs from the email.
	AddAuthors(ctx context.Context, authors ...*core.Author) ([]*core.Author, error)

	// GetAuthor retrieves a single author by ID.
	// Returns ErrNotFound if the author doesn't exist.
	GetAuthor(ctx context.Context, id core.ID) (*core.Author, error)

	// FindAuthorByEmail finds an author by the derived email address.
	// Returns ErrNotFound if no matching author exists.
	FindAuthorByEmail(ctx context.Context, email string) (*core.Author, error)

	// GetOrCreateAuthor finds an author by email or creates it.
	// Thread-safe: handles concurrent creation attempts for the same email.
	GetOrCreateAuthor(ctx context.Context, author *core.Author) (*core.Author, error)
}

// CategoryRepository provides operations for managing publishing categories.
type CategoryRepository interface {
	Repository
	// AddCategories adds one or more categories to storage.
	// Uses content-based IDs derived from the slug.
	AddCategories(ctx context.Context, categories ...*core.Category) ([]*core.Category, error)

	// GetCategory retrieves a single category by ID.
	// Returns ErrNotFound if the category doesn't exist.
	GetCategory(ctx context.Context, id core.ID) (*core.Category, error)

	// FindCategoryBySlug finds a category by its slug.
	// Returns ErrNotFound if no matching category exists.
	FindCategoryBySlug(ctx context.Context, slug string) (*core.Category, error)
}

// StagedFile pairs a staged article with the file name it was written under.
type StagedFile struct {
	Name    string
	Article *core.StagedArticle
}

// StagingStore is the durable fallback area for articles that could not be
// written to the primary store. One JSON file per staged article.
type StagingStore interface {
	// Stage writes a staged article to the staging area and returns the
	// file name it was written under. File names are unique and ordered
	// by creation time.
	Stage(ctx context.Context, staged *core.StagedArticle) (string, error)

	// List returns all staged articles in creation order.
	// Unreadable files are skipped with a logged warning, not returned as errors.
	List(ctx context.Context) ([]StagedFile, error)

	// Remove deletes a staged file by name. Callers must only remove a file
	// after its article has been confirmed written to the primary store.
	Remove(ctx context.Context, name string) error
}
