package staging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telepress/telepress/core"
	"github.com/telepress/telepress/storage"
)

func testStaged(title string) *core.StagedArticle {
	return &core.StagedArticle{
		Content: core.EnhancedContent{
			Title:      title,
			Excerpt:    "Excerpt",
			Body:       "<p>Body</p>",
			AuthorName: "Jane Doe",
			Tags:       []string{"sports"},
		},
		ImageURL:     "/uploads/telegram/a.jpg",
		CategorySlug: "sports",
		SourceKey:    core.SourceKey("beINSPORTS", 1),
	}
}

func TestStore_StageWritesSchema(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	name, err := store.Stage(context.Background(), testStaged("Title one"))
	require.NoError(t, err)
	require.NotEmpty(t, name)

	data, err := os.ReadFile(filepath.Join(store.dir, name))
	require.NoError(t, err)

	var decoded core.StagedArticle
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Title one", decoded.Content.Title)
	assert.Equal(t, core.StatusPendingImport, decoded.Status)
	assert.False(t, decoded.CreatedAt.IsZero())
}

func TestStore_NamesAreUniqueAndOrdered(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	var names []string
	for i := 0; i < 10; i++ {
		name, err := store.Stage(ctx, testStaged("t"))
		require.NoError(t, err)
		names = append(names, name)
	}

	seen := make(map[string]bool)
	for i, name := range names {
		assert.False(t, seen[name], "duplicate staged file name %q", name)
		seen[name] = true
		if i > 0 {
			assert.Greater(t, name, names[i-1], "names must be monotonically increasing")
		}
	}
}

func TestStore_ListReturnsCreationOrder(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := store.Stage(ctx, testStaged(title))
		require.NoError(t, err)
	}

	files, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "first", files[0].Article.Content.Title)
	assert.Equal(t, "second", files[1].Article.Content.Title)
	assert.Equal(t, "third", files[2].Article.Content.Title)
}

func TestStore_ListSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Stage(ctx, testStaged("good"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "99999999999999999999.json"), []byte("{not json"), 0644))

	files, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "good", files[0].Article.Content.Title)
}

func TestStore_Remove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	name, err := store.Stage(ctx, testStaged("t"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, name))

	files, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)

	assert.ErrorIs(t, store.Remove(ctx, name), storage.ErrNotFound)
}

func TestStore_RemoveRejectsTraversal(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Remove(context.Background(), "../escape.json"))
}
