package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/telepress/telepress/core"
	"github.com/telepress/telepress/storage"
)

// AuthorRepository implements storage.AuthorRepository for BadgerDB.
type AuthorRepository struct {
	backend *Backend
}

var _ storage.AuthorRepository = (*AuthorRepository)(nil)

// NewAuthorRepository creates a new AuthorRepository.
func NewAuthorRepository(backend *Backend) (*AuthorRepository, error) {
	return &AuthorRepository{
		backend: backend,
	}, nil
}

// Close releases resources. AuthorRepository has no resources to release.
func (r *AuthorRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *AuthorRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddAuthors adds one or more authors to storage.
func (r *AuthorRepository) AddAuthors(ctx context.Context, authors ...*core.Author) ([]*core.Author, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, author := range authors {
			// Use content-based ID from the email if not set
			if author.Id == 0 {
				author.Id = core.IDFromContent(author.Email)
			}

			author.InsertedAt = time.Now().UTC()
			author.UpdatedAt = author.InsertedAt

			key := makeAuthorKey(author.Id)
			value := storage.MarshalAuthor(author)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			emailKey := makeAuthorEmailKey(author.Email)
			if err := tx.Set(emailKey, storage.MarshalID(author.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return authors, nil
}

// GetAuthor retrieves a single author by ID.
func (r *AuthorRepository) GetAuthor(ctx context.Context, id core.ID) (*core.Author, error) {
	var result *core.Author
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readAuthor(tx, makeAuthorKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindAuthorByEmail finds an author by the derived email address.
func (r *AuthorRepository) FindAuthorByEmail(ctx context.Context, email string) (*core.Author, error) {
	var result *core.Author
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeAuthorEmailKey(email))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var authorID core.ID
		if err := item.Value(func(val []byte) error {
			authorID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readAuthor(tx, makeAuthorKey(authorID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetOrCreateAuthor finds an author by email or creates it.
// Handles concurrent creation attempts: badger transaction conflicts are
// retried with a fresh lookup, so two racing callers converge on one identity.
func (r *AuthorRepository) GetOrCreateAuthor(ctx context.Context, author *core.Author) (*core.Author, error) {
	existing, err := r.FindAuthorByEmail(ctx, author.Email)
	if err == nil {
		return existing, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}

	_, err = r.AddAuthors(ctx, author)
	if err == badger.ErrConflict {
		// Another writer created the author between our lookup and write.
		return r.FindAuthorByEmail(ctx, author.Email)
	}
	if err != nil {
		return nil, err
	}
	return author, nil
}

// readAuthor reads and unmarshals an author; returns nil if not found.
func readAuthor(tx *badger.Txn, key []byte) (*core.Author, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var author *core.Author
	err = item.Value(func(val []byte) error {
		var err error
		author, err = storage.UnmarshalAuthor(val)
		return err
	})
	return author, err
}
