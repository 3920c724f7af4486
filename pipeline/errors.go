package pipeline

import "errors"

var (
	// ErrChannelMapRequired is returned when a channel map is not provided.
	ErrChannelMapRequired = errors.New("channel map required")

	// ErrMediaPipelineRequired is returned when a media processor is not provided.
	ErrMediaPipelineRequired = errors.New("media pipeline required")

	// ErrEnhancerRequired is returned when a content enhancer is not provided.
	ErrEnhancerRequired = errors.New("content enhancer required")

	// ErrAuthorResolverRequired is returned when an author resolver is not provided.
	ErrAuthorResolverRequired = errors.New("author resolver required")

	// ErrPersisterRequired is returned when a persister is not provided.
	ErrPersisterRequired = errors.New("persister required")
)
