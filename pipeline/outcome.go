package pipeline

import "github.com/telepress/telepress/core"

// State is the terminal state of one processed message.
type State string

const (
	// StatePersisted means the article reached the primary store.
	StatePersisted State = "persisted"

	// StateStaged means the article was written to the staging area.
	StateStaged State = "staged"

	// StateDropped means processing failed and no record was produced.
	StateDropped State = "dropped"

	// StateRejected means the message was refused before enhancement,
	// e.g. an unmapped channel or a duplicate delivery.
	StateRejected State = "rejected"
)

// Outcome is the typed result of one unit of work. Every accepted message
// produces exactly one Outcome; errors never escape a worker.
type Outcome struct {
	State      State
	ChannelKey string
	MessageID  int
	ArticleID  core.ID  // set when State is StatePersisted
	StagedName string   // set when State is StateStaged
	Category   string   // resolved category slug, when known
	Fallbacks  []string // enhancement fallback strategies that were applied
	Reason     string   // set for StateDropped and StateRejected
}
