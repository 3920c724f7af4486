// Package media turns a remote source image into a stored, publish-ready
// JPEG: download to a temp file, fit to the site's display dimensions, and
// upload to an object store. Stores come in local-filesystem and
// S3-compatible flavors behind the ObjectStore interface.
package media
