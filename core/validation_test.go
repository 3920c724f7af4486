package core

import (
	"errors"
	"strings"
	"testing"
)

func validContent() *EnhancedContent {
	return &EnhancedContent{
		Title:      "Real Madrid seal dramatic comeback win",
		Excerpt:    "A late double turned the match around in front of a stunned home crowd.",
		Body:       "<p>Real Madrid won 3-1.</p>",
		AuthorName: "Carlos Mendes",
		Tags:       []string{"football", "la-liga"},
	}
}

func TestValidateEnhancedContent(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EnhancedContent)
		wantErr error
	}{
		{
			name:    "valid content",
			mutate:  func(c *EnhancedContent) {},
			wantErr: nil,
		},
		{
			name:    "empty title",
			mutate:  func(c *EnhancedContent) { c.Title = "" },
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "title too long",
			mutate:  func(c *EnhancedContent) { c.Title = strings.Repeat("a", MaxTitleLen+1) },
			wantErr: ErrTitleTooLong,
		},
		{
			name:    "title at limit",
			mutate:  func(c *EnhancedContent) { c.Title = strings.Repeat("a", MaxTitleLen) },
			wantErr: nil,
		},
		{
			name:    "empty excerpt",
			mutate:  func(c *EnhancedContent) { c.Excerpt = "" },
			wantErr: ErrEmptyExcerpt,
		},
		{
			name:    "excerpt too long",
			mutate:  func(c *EnhancedContent) { c.Excerpt = strings.Repeat("b", MaxExcerptLen+1) },
			wantErr: ErrExcerptTooLong,
		},
		{
			name:    "empty body",
			mutate:  func(c *EnhancedContent) { c.Body = "" },
			wantErr: ErrEmptyBody,
		},
		{
			name:    "author name too short",
			mutate:  func(c *EnhancedContent) { c.AuthorName = "Al" },
			wantErr: ErrInvalidAuthorName,
		},
		{
			name:    "author name too long",
			mutate:  func(c *EnhancedContent) { c.AuthorName = strings.Repeat("n", MaxAuthorNameLen+1) },
			wantErr: ErrInvalidAuthorName,
		},
		{
			name:    "too many tags",
			mutate:  func(c *EnhancedContent) { c.Tags = []string{"a", "b", "c", "d", "e", "f"} },
			wantErr: ErrTooManyTags,
		},
		{
			name:    "no tags is valid",
			mutate:  func(c *EnhancedContent) { c.Tags = nil },
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := validContent()
			tt.mutate(content)

			err := ValidateEnhancedContent(content)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEnhancedContent() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEnhancedContent() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidContent) {
				t.Errorf("ValidateEnhancedContent() error should wrap ErrInvalidContent, got %v", err)
			}
		})
	}
}

func TestValidateEnhancedContent_Nil(t *testing.T) {
	if err := ValidateEnhancedContent(nil); !errors.Is(err, ErrInvalidContent) {
		t.Errorf("ValidateEnhancedContent(nil) error = %v, want ErrInvalidContent", err)
	}
}

func TestValidTitle_MultiByte(t *testing.T) {
	// Rune count, not byte count, is what the limit is defined over.
	title := strings.Repeat("é", MaxTitleLen)
	if err := ValidTitle(title); err != nil {
		t.Errorf("ValidTitle() rejected %d-rune title: %v", MaxTitleLen, err)
	}
}
