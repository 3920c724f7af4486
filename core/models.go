package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SourceKey derives the idempotency key for a channel message.
// At-least-once transports may redeliver the same message; the key lets the
// publisher detect an article that was already produced for it.
func SourceKey(channelKey string, messageID int) ID {
	return IDFromContent(channelKey + ":" + strconv.Itoa(messageID))
}

// IncomingMessage is a single accepted channel event. It is created per event
// and discarded once the pipeline finishes with it.
type IncomingMessage struct {
	ChannelKey  string
	MessageID   int
	CaptionText string
	MediaRef    string // transport file reference, resolvable to a download URL
	ReceivedAt  time.Time
}

// EnhancedContent holds the publishable article fields produced by the
// content enhancer. Field limits are enforced by ValidateEnhancedContent;
// individual fields that fail validation are replaced by fallbacks, never
// rejected wholesale.
type EnhancedContent struct {
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Body       string   `json:"content"` // HTML-paragraph formatted
	AuthorName string   `json:"authorName"`
	Tags       []string `json:"tags"`
}

// ArticleImage describes the article's lead image.
type ArticleImage struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

// ArticleMetadata carries provenance information for imported articles.
type ArticleMetadata struct {
	TelegramSource bool      `json:"telegramSource"`
	ImportedAt     time.Time `json:"importedAt"`
}

const (
	// StatusPublished is the status of an article in the primary store.
	StatusPublished = "published"

	// StatusPendingImport is the status of a staged article awaiting reconciliation.
	StatusPendingImport = "pending-import"

	// SourceTelegram marks articles that originated from a broadcast channel.
	SourceTelegram = "telegram"
)

// Article is the persisted article document in the primary store.
type Article struct {
	Id          ID
	SourceKey   ID // idempotency key derived from channel + message id
	Title       string
	Excerpt     string
	Content     string
	Image       ArticleImage
	CategoryId  ID
	AuthorId    ID
	Status      string
	PublishedAt time.Time
	Tags        []string
	Source      string
	Metadata    ArticleMetadata
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// StagedArticle is the durable file-based record written when primary
// persistence fails. Its JSON form is the staging file schema.
type StagedArticle struct {
	Content      EnhancedContent `json:"content"`
	ImageURL     string          `json:"imageUrl"`
	CategorySlug string          `json:"categorySlug"`
	SourceKey    ID              `json:"sourceKey"`
	CreatedAt    time.Time       `json:"createdAt"`
	Status       string          `json:"status"`
}

// Author is a persisted attribution identity for generated author names.
type Author struct {
	Id         ID
	Name       string
	Email      string
	Role       string
	IsVerified bool
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Category names a publishing category.
type Category struct {
	Id         ID
	Name       string
	Slug       string
	InsertedAt time.Time
	UpdatedAt  time.Time
}
