package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/telepress/telepress/core"
)

// Key prefixes for different data types
const (
	articlePrefix          = "artrec"
	articleDatePrefix      = "artrecd"
	articleSourceKeyPrefix = "artrecs"
	articleIDSeq           = "artrecseq"
	authorPrefix           = "autrec"
	authorEmailPrefix      = "autremail"
	categoryPrefix         = "catrec"
	categorySlugPrefix     = "catslug"
)

// makeArticleKey generates a key for an article by ID.
func makeArticleKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", articlePrefix, id))
}

// makeArticleDateKey generates a composite key for the published-date index.
// Format: prefix:timestamp:id
func makeArticleDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := articleDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialArticleDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialArticleDateKey(timestamp time.Time) []byte {
	prefix := articleDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeArticleSourceKey generates a key for the source-key (idempotency) index.
func makeArticleSourceKey(key core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", articleSourceKeyPrefix, key))
}

// makeAuthorKey generates a key for an author by ID.
func makeAuthorKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", authorPrefix, id))
}

// makeAuthorEmailKey generates a key for the author email index.
func makeAuthorEmailKey(email string) []byte {
	return []byte(authorEmailPrefix + ":" + email)
}

// makeCategoryKey generates a key for a category by ID.
func makeCategoryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", categoryPrefix, id))
}

// makeCategorySlugKey generates a key for the category slug index.
func makeCategorySlugKey(slug string) []byte {
	return []byte(categorySlugPrefix + ":" + slug)
}
