// Package notify delivers best-effort NEW_ARTICLE webhook events for
// articles that reach the primary store. Delivery is bounded by a short
// timeout and never retried.
package notify
