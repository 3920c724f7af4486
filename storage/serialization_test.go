package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telepress/telepress/core"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalArticle(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name    string
		article *core.Article
	}{
		{
			name: "full article",
			article: &core.Article{
				Id:        core.ID(7),
				SourceKey: core.SourceKey("beINSPORTS", 1001),
				Title:     "Real Madrid wins 3-1",
				Excerpt:   "A decisive second half sealed the result.",
				Content:   "<p>Real Madrid wins 3-1</p>",
				Image: core.ArticleImage{
					URL:     "/uploads/telegram/abc.jpg",
					Alt:     "Real Madrid wins 3-1",
					Caption: "Real Madrid wins 3-1",
				},
				CategoryId:  core.IDFromContent("sports"),
				AuthorId:    core.ID(3),
				Status:      core.StatusPublished,
				PublishedAt: now,
				Tags:        []string{"football", "la-liga"},
				Source:      core.SourceTelegram,
				Metadata: core.ArticleMetadata{
					TelegramSource: true,
					ImportedAt:     now,
				},
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
		{
			name: "article without tags",
			article: &core.Article{
				Id:          core.ID(8),
				SourceKey:   core.SourceKey("worldnews", 55),
				Title:       "Untitled",
				Excerpt:     "Excerpt",
				Content:     "<p>Body</p>",
				CategoryId:  core.IDFromContent("news"),
				AuthorId:    core.ID(3),
				Status:      core.StatusPublished,
				PublishedAt: now,
				Source:      core.SourceTelegram,
				Metadata:    core.ArticleMetadata{TelegramSource: true, ImportedAt: now},
				InsertedAt:  now,
				UpdatedAt:   now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalArticle(tt.article)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalArticle(data)
			require.NoError(t, err)
			assert.Equal(t, tt.article, decoded)
		})
	}
}

func TestUnmarshalArticle_Truncated(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	article := &core.Article{
		Id:          core.ID(1),
		Title:       "Title",
		Excerpt:     "Excerpt",
		Content:     "<p>Body</p>",
		Status:      core.StatusPublished,
		PublishedAt: now,
		Source:      core.SourceTelegram,
		Metadata:    core.ArticleMetadata{ImportedAt: now},
		InsertedAt:  now,
		UpdatedAt:   now,
	}
	data := MarshalArticle(article)

	_, err := UnmarshalArticle(data[:len(data)/2])
	assert.Error(t, err)
}

func TestMarshalUnmarshalAuthor(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	author := &core.Author{
		Id:         core.IDFromContent("carlos.mendes@telepress.news"),
		Name:       "Carlos Mendes",
		Email:      "carlos.mendes@telepress.news",
		Role:       "author",
		IsVerified: true,
		InsertedAt: now,
		UpdatedAt:  now,
	}

	data := MarshalAuthor(author)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalAuthor(data)
	require.NoError(t, err)
	assert.Equal(t, author, decoded)
}

func TestMarshalUnmarshalCategory(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	category := &core.Category{
		Id:         core.IDFromContent("sports"),
		Name:       "Sports",
		Slug:       "sports",
		InsertedAt: now,
		UpdatedAt:  now,
	}

	data := MarshalCategory(category)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCategory(data)
	require.NoError(t, err)
	assert.Equal(t, category, decoded)
}
