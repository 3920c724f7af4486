// Package pipeline orchestrates the processing of accepted channel
// messages. Each message runs the media, enhancement, author-resolution,
// persistence and notification stages sequentially on a shared worker
// pool, terminating in exactly one typed Outcome. Failures are isolated to
// the message that caused them.
package pipeline
