// Package enhance generates publishable article content from channel-post
// captions. The primary path asks an OpenAI-compatible chat service for a
// JSON article; every field that comes back invalid is replaced with a
// deterministic caption-derived fallback, and a failed service call yields
// fully generated fallback content. Degradation is part of the contract:
// enhancement never fails a message.
package enhance
