package domain

import "time"

// Message is a raw record from the message-history store. Records are
// read-only: the store is never mutated.
type Message struct {
	ID               int64
	GUID             string
	Time             time.Time
	Text             string
	FromMe           bool
	Handle           string // raw sender identifier; empty for messages sent by self
	ThreadOriginator string // GUID of the reply-chain anchor; empty for flat messages
	HasAttachment    bool
}

// Chat is the conversation a message belongs to.
type Chat struct {
	ID   int64
	Name string // display name, falling back to the chat identifier
}

// Window is a reconstructed conversation leading up to a nomination.
// Messages are strictly chronological and always end with the nomination
// itself. For threaded nominations, ThreadStart is the index of the thread
// originator; entries at or after it belong to the thread.
type Window struct {
	Chat        *Chat // nil when the nomination has no chat membership
	Messages    []Message
	IsThread    bool
	ThreadStart int
}
