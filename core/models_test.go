package core

import (
	"encoding/json"
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestSourceKey(t *testing.T) {
	tests := []struct {
		name        string
		channelKey  string
		messageID   int
		otherKey    string
		otherID     int
		wantDistinct bool
	}{
		{
			name:       "same channel and message",
			channelKey: "beINSPORTS",
			messageID:  42,
			otherKey:   "beINSPORTS",
			otherID:    42,
		},
		{
			name:         "different message id",
			channelKey:   "beINSPORTS",
			messageID:    42,
			otherKey:     "beINSPORTS",
			otherID:      43,
			wantDistinct: true,
		},
		{
			name:         "different channel",
			channelKey:   "beINSPORTS",
			messageID:    42,
			otherKey:     "worldnews",
			otherID:      42,
			wantDistinct: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k1 := SourceKey(tt.channelKey, tt.messageID)
			k2 := SourceKey(tt.otherKey, tt.otherID)

			if tt.wantDistinct && k1 == k2 {
				t.Errorf("SourceKey() produced same key for distinct messages")
			}
			if !tt.wantDistinct && k1 != k2 {
				t.Errorf("SourceKey() produced different keys for the same message: %d vs %d", k1, k2)
			}
		})
	}
}

func TestStagedArticle_JSONSchema(t *testing.T) {
	staged := StagedArticle{
		Content: EnhancedContent{
			Title:      "Title",
			Excerpt:    "Excerpt",
			Body:       "<p>Body</p>",
			AuthorName: "Jane Doe",
			Tags:       []string{"sports"},
		},
		ImageURL:     "/uploads/img.jpg",
		CategorySlug: "sports",
		Status:       StatusPendingImport,
	}

	data, err := json.Marshal(staged)
	if err != nil {
		t.Fatalf("marshal staged article: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal staged article: %v", err)
	}

	for _, key := range []string{"content", "imageUrl", "categorySlug", "sourceKey", "createdAt", "status"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("staging file schema missing %q", key)
		}
	}

	content, ok := fields["content"].(map[string]any)
	if !ok {
		t.Fatalf("content field is not an object")
	}
	for _, key := range []string{"title", "excerpt", "content", "authorName", "tags"} {
		if _, ok := content[key]; !ok {
			t.Errorf("enhanced content schema missing %q", key)
		}
	}
}
