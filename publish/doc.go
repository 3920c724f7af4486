// Package publish writes finished articles to the primary store with a
// durable fallback. The primary write races a fixed timeout; when it loses,
// the article is serialized to a file-based staging area instead, and a
// separate mutex-guarded reconciliation pass later migrates staged records
// into the store, deleting each file only after its write is confirmed.
package publish
