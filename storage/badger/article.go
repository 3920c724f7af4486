package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/telepress/telepress/core"
	"github.com/telepress/telepress/storage"
)

// ArticleRepository implements storage.ArticleRepository for BadgerDB.
type ArticleRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(backend *Backend) (*ArticleRepository, error) {
	idSeq, err := backend.GetSequence(articleIDSeq)
	if err != nil {
		return nil, err
	}

	return &ArticleRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ArticleRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ArticleRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddArticles adds one or more articles to storage.
// Returns storage.ErrDuplicateKey if an article already exists for a source key,
// leaving previously-added articles in the batch committed only on success.
func (r *ArticleRepository) AddArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, article := range articles {
			// The source key is the idempotency guard: one article per message.
			if article.SourceKey != 0 {
				if _, err := tx.Get(makeArticleSourceKey(article.SourceKey)); err == nil {
					return storage.ErrDuplicateKey
				} else if err != badger.ErrKeyNotFound {
					return err
				}
			}

			if article.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				article.Id = core.ID(nextID)
			}

			article.InsertedAt = time.Now().UTC()
			article.UpdatedAt = article.InsertedAt

			// Store primary record
			key := makeArticleKey(article.Id)
			value := storage.MarshalArticle(article)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update published-date index
			dateKey := makeArticleDateKey(article.PublishedAt, article.Id)
			if err := tx.Set(dateKey, storage.MarshalID(article.Id)); err != nil {
				return err
			}

			// Update source-key index
			if article.SourceKey != 0 {
				if err := tx.Set(makeArticleSourceKey(article.SourceKey), storage.MarshalID(article.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return articles, nil
}

// GetArticle retrieves a single article by ID.
func (r *ArticleRepository) GetArticle(ctx context.Context, id core.ID) (*core.Article, error) {
	var result *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readArticle(tx, makeArticleKey(id))
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

// GetArticleBySourceKey retrieves the article produced for a channel message.
func (r *ArticleRepository) GetArticleBySourceKey(ctx context.Context, key core.ID) (*core.Article, error) {
	var result *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeArticleSourceKey(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var articleID core.ID
		if err := item.Value(func(val []byte) error {
			articleID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readArticle(tx, makeArticleKey(articleID))
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

// GetRecentArticles retrieves the N most recently published articles, most recent first.
func (r *ArticleRepository) GetRecentArticles(ctx context.Context, limit int) ([]*core.Article, error) {
	var results []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible date-index key, then walk backwards.
		startKey := makePartialArticleDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(articleDatePrefix + ":")

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var articleID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				articleID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			article, err := readArticle(tx, makeArticleKey(articleID))
			if err != nil {
				return err
			}
			if article != nil {
				results = append(results, article)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteArticles removes articles by their IDs.
func (r *ArticleRepository) DeleteArticles(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeArticleKey(id)

			article, err := readArticle(tx, key)
			if err != nil {
				return err
			}
			if article == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeArticleDateKey(article.PublishedAt, article.Id)); err != nil {
				return err
			}
			if article.SourceKey != 0 {
				if err := tx.Delete(makeArticleSourceKey(article.SourceKey)); err != nil {
					return err
				}
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readArticle reads and unmarshals an article; returns nil if not found.
func readArticle(tx *badger.Txn, key []byte) (*core.Article, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var article *core.Article
	err = item.Value(func(val []byte) error {
		var err error
		article, err = storage.UnmarshalArticle(val)
		return err
	})
	return article, err
}
