package domain

import (
	"context"
	"time"
)

// MessageStore is a read-only query interface over the message history.
// Lookup misses return (nil, nil); errors are reserved for store failures.
type MessageStore interface {
	// NominationCandidates returns messages containing the keyword
	// (case-insensitive) on or after the cutoff, excluding reaction
	// annotations, in chronological order.
	NominationCandidates(ctx context.Context, keyword string, cutoff time.Time) ([]Message, error)

	// ChatForMessage resolves the chat a message belongs to.
	ChatForMessage(ctx context.Context, messageID int64) (*Chat, error)

	// MessageByGUID resolves a message by its unique reference.
	MessageByGUID(ctx context.Context, guid string) (*Message, error)

	// ChatMessagesBefore returns up to limit qualifying messages strictly
	// before t in the given chat, nearest first in query order but returned
	// chronologically. When excludeThreaded is set, thread replies are
	// skipped.
	ChatMessagesBefore(ctx context.Context, chatID int64, t time.Time, limit int, excludeThreaded bool) ([]Message, error)

	// ThreadReplies returns all qualifying replies anchored to the given
	// originator with timestamps strictly before t, chronologically.
	ThreadReplies(ctx context.Context, originatorGUID string, before time.Time) ([]Message, error)

	Close() error
}
