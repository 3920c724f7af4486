package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telepress/telepress/core"
	"github.com/telepress/telepress/storage"
)

func setupArticleRepo(t *testing.T) storage.ArticleRepository {
	t.Helper()

	backend, err := OpenBackend(t.TempDir(), false)
	require.NoError(t, err)

	repo, err := NewArticleRepository(backend)
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func testArticle(channel string, messageID int, publishedAt time.Time) *core.Article {
	return &core.Article{
		SourceKey:   core.SourceKey(channel, messageID),
		Title:       "Real Madrid wins 3-1",
		Excerpt:     "A decisive second half sealed the result.",
		Content:     "<p>Real Madrid wins 3-1</p>",
		Image:       core.ArticleImage{URL: "/uploads/telegram/a.jpg", Alt: "Real Madrid wins 3-1"},
		CategoryId:  core.IDFromContent("sports"),
		AuthorId:    core.ID(1),
		Status:      core.StatusPublished,
		PublishedAt: publishedAt,
		Tags:        []string{"football"},
		Source:      core.SourceTelegram,
		Metadata:    core.ArticleMetadata{TelegramSource: true, ImportedAt: publishedAt},
	}
}

func TestArticleRepository_AddAndGet(t *testing.T) {
	repo := setupArticleRepo(t)
	ctx := context.Background()

	article := testArticle("beINSPORTS", 1, time.Now().UTC())
	added, err := repo.AddArticles(ctx, article)
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.NotZero(t, added[0].Id)
	require.False(t, added[0].InsertedAt.IsZero())

	got, err := repo.GetArticle(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, added[0].Title, got.Title)
	assert.Equal(t, core.SourceTelegram, got.Source)
	assert.True(t, got.Metadata.TelegramSource)
}

func TestArticleRepository_GetMissing(t *testing.T) {
	repo := setupArticleRepo(t)

	_, err := repo.GetArticle(context.Background(), core.ID(999))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestArticleRepository_SourceKeyIndex(t *testing.T) {
	repo := setupArticleRepo(t)
	ctx := context.Background()

	article := testArticle("beINSPORTS", 7, time.Now().UTC())
	_, err := repo.AddArticles(ctx, article)
	require.NoError(t, err)

	got, err := repo.GetArticleBySourceKey(ctx, core.SourceKey("beINSPORTS", 7))
	require.NoError(t, err)
	assert.Equal(t, article.Id, got.Id)

	_, err = repo.GetArticleBySourceKey(ctx, core.SourceKey("beINSPORTS", 8))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestArticleRepository_DuplicateSourceKey(t *testing.T) {
	repo := setupArticleRepo(t)
	ctx := context.Background()

	_, err := repo.AddArticles(ctx, testArticle("beINSPORTS", 7, time.Now().UTC()))
	require.NoError(t, err)

	// A redelivered message must not produce a second article.
	_, err = repo.AddArticles(ctx, testArticle("beINSPORTS", 7, time.Now().UTC()))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestArticleRepository_GetRecent(t *testing.T) {
	repo := setupArticleRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		_, err := repo.AddArticles(ctx, testArticle("beINSPORTS", i, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	recent, err := repo.GetRecentArticles(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	// Most recent first
	assert.Equal(t, core.SourceKey("beINSPORTS", 4), recent[0].SourceKey)
	assert.Equal(t, core.SourceKey("beINSPORTS", 3), recent[1].SourceKey)
	assert.Equal(t, core.SourceKey("beINSPORTS", 2), recent[2].SourceKey)
}

func TestArticleRepository_Delete(t *testing.T) {
	repo := setupArticleRepo(t)
	ctx := context.Background()

	article := testArticle("beINSPORTS", 42, time.Now().UTC())
	added, err := repo.AddArticles(ctx, article)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteArticles(ctx, added[0].Id))

	_, err = repo.GetArticle(ctx, added[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Source-key index must be cleaned up so the message could be re-imported.
	_, err = repo.GetArticleBySourceKey(ctx, article.SourceKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteArticles(ctx, added[0].Id), storage.ErrNotFound)
}
