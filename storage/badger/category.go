package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/telepress/telepress/core"
	"github.com/telepress/telepress/storage"
)

// CategoryRepository implements storage.CategoryRepository for BadgerDB.
type CategoryRepository struct {
	backend *Backend
}

var _ storage.CategoryRepository = (*CategoryRepository)(nil)

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(backend *Backend) (*CategoryRepository, error) {
	return &CategoryRepository{
		backend: backend,
	}, nil
}

// Close releases resources. CategoryRepository has no resources to release.
func (r *CategoryRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *CategoryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddCategories adds one or more categories to storage.
func (r *CategoryRepository) AddCategories(ctx context.Context, categories ...*core.Category) ([]*core.Category, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, category := range categories {
			// Use content-based ID from the slug if not set
			if category.Id == 0 {
				category.Id = core.IDFromContent(category.Slug)
			}

			category.InsertedAt = time.Now().UTC()
			category.UpdatedAt = category.InsertedAt

			key := makeCategoryKey(category.Id)
			value := storage.MarshalCategory(category)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			slugKey := makeCategorySlugKey(category.Slug)
			if err := tx.Set(slugKey, storage.MarshalID(category.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory retrieves a single category by ID.
func (r *CategoryRepository) GetCategory(ctx context.Context, id core.ID) (*core.Category, error) {
	var result *core.Category
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readCategory(tx, makeCategoryKey(id))
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

// FindCategoryBySlug finds a category by its slug.
func (r *CategoryRepository) FindCategoryBySlug(ctx context.Context, slug string) (*core.Category, error) {
	var result *core.Category
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCategorySlugKey(slug))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var categoryID core.ID
		if err := item.Value(func(val []byte) error {
			categoryID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readCategory(tx, makeCategoryKey(categoryID))
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

// readCategory reads and unmarshals a category; returns nil if not found.
func readCategory(tx *badger.Txn, key []byte) (*core.Category, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var category *core.Category
	err = item.Value(func(val []byte) error {
		var err error
		category, err = storage.UnmarshalCategory(val)
		return err
	})
	return category, err
}
