package enhance

import (
	"html"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/telepress/telepress/core"
)

// Named fallback strategies, recorded per message so outcomes show which
// decision points degraded.
const (
	FallbackFull       = "full"
	FallbackTitle      = "title"
	FallbackExcerpt    = "excerpt"
	FallbackBody       = "body"
	FallbackAuthorName = "authorName"
	FallbackTags       = "tags"
)

// Last-resort copy for captions that clean down to nothing, so derived
// titles and excerpts are never empty.
const (
	lastResortTitle   = "Channel report"
	lastResortExcerpt = "A report received through a monitored channel, pending editorial review."
)

// Bylines used when the service does not provide a usable author name.
var fallbackAuthors = []string{
	"Marta Villanueva",
	"Daniel Ortega",
	"Lucia Fernandez",
	"Javier Morales",
	"Elena Castillo",
	"Sergio Ramirez",
}

// fallbackContent derives a complete, invariant-satisfying EnhancedContent
// from the caption alone.
func fallbackContent(caption string) core.EnhancedContent {
	return core.EnhancedContent{
		Title:      fallbackTitle(caption),
		Excerpt:    fallbackExcerpt(caption),
		Body:       fallbackBody(caption),
		AuthorName: randomAuthor(),
		Tags:       captionTags(caption),
	}
}

// fallbackTitle prefers the caption's first sentence when it is between 10
// and 80 characters; otherwise the caption is cut to 77 characters plus an
// ellipsis.
func fallbackTitle(caption string) string {
	text := cleanCaption(caption)
	if text == "" {
		return lastResortTitle
	}

	if s := firstSentence(text); s != "" {
		if n := len([]rune(s)); n >= 10 && n <= 80 {
			return s
		}
	}

	runes := []rune(text)
	if len(runes) <= 80 {
		return text
	}
	return strings.TrimSpace(string(runes[:77])) + "..."
}

func fallbackExcerpt(caption string) string {
	text := cleanCaption(caption)
	if text == "" {
		return lastResortExcerpt
	}
	runes := []rune(text)
	if len(runes) <= core.MaxExcerptLen {
		return text
	}
	return strings.TrimSpace(string(runes[:core.MaxExcerptLen-3])) + "..."
}

// fallbackBody expands the caption into a minimal three-paragraph article.
func fallbackBody(caption string) string {
	lead := cleanCaption(caption)
	if lead == "" {
		lead = lastResortExcerpt
	}

	var b strings.Builder
	b.WriteString("<p>")
	b.WriteString(html.EscapeString(lead))
	b.WriteString("</p>")
	b.WriteString("<p>This report reached our newsroom through a monitored channel and is published as received, pending further editorial review.</p>")
	b.WriteString("<p>More details will be added to this article as they become available.</p>")
	return b.String()
}

func randomAuthor() string {
	return fallbackAuthors[rand.IntN(len(fallbackAuthors))]
}

// captionTags collects up to MaxTags distinct hashtags from the caption,
// lowercased and without the sigil.
func captionTags(caption string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, field := range strings.Fields(caption) {
		if !strings.HasPrefix(field, "#") || len(field) < 2 {
			continue
		}
		tag := strings.ToLower(strings.TrimFunc(field[1:], func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == core.MaxTags {
			break
		}
	}
	return tags
}

// cleanCaption removes hashtag tokens and collapses whitespace. A caption
// consisting only of hashtags is returned as-is so derived fields stay
// non-empty.
func cleanCaption(caption string) string {
	fields := strings.Fields(caption)
	kept := fields[:0:0]
	for _, f := range fields {
		if !strings.HasPrefix(f, "#") {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return strings.TrimSpace(caption)
	}
	return strings.Join(kept, " ")
}

// firstSentence returns the text up to and including the first sentence
// terminator, or "" when there is none.
func firstSentence(text string) string {
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			return strings.TrimSpace(text[:i+1])
		}
	}
	return ""
}
