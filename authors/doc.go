// Package authors maps generated bylines to persisted author identities,
// with a synchronized in-process cache and a well-known system identity as
// the fallback for any resolution failure.
package authors
