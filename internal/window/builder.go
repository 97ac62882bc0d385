// Package window reconstructs the conversation leading up to a nomination.
//
// Two topologies exist: flat chat history and threaded reply chains. A
// threaded nomination gets a short run of flat messages preceding the thread
// originator, then the originator, then every reply up to the nomination.
// A flat nomination gets the nearest preceding chat messages. Either way the
// result is one chronological sequence ending in the nomination itself.
package window

import (
	"context"
	"fmt"
	"log/slog"

	"joty/internal/domain"
)

const (
	// DefaultThreadLookback is the number of flat messages fetched before
	// a thread originator as pre-thread context.
	DefaultThreadLookback = 5
	// DefaultFlatLookback is the number of messages fetched before a
	// non-threaded nomination.
	DefaultFlatLookback = 15
)

type Builder struct {
	store          domain.MessageStore
	threadLookback int
	flatLookback   int
	logger         *slog.Logger
}

func NewBuilder(store domain.MessageStore, threadLookback, flatLookback int, logger *slog.Logger) *Builder {
	if threadLookback <= 0 {
		threadLookback = DefaultThreadLookback
	}
	if flatLookback <= 0 {
		flatLookback = DefaultFlatLookback
	}
	return &Builder{
		store:          store,
		threadLookback: threadLookback,
		flatLookback:   flatLookback,
		logger:         logger,
	}
}

// Build returns the context window for a nomination. Store-lookup misses
// degrade: a nomination without a chat gets an empty context, and a thread
// reference that cannot be resolved falls back to flat-context semantics
// with IsThread=false.
func (b *Builder) Build(ctx context.Context, nom domain.Message) (domain.Window, error) {
	chat, err := b.store.ChatForMessage(ctx, nom.ID)
	if err != nil {
		return domain.Window{}, fmt.Errorf("resolve chat: %w", err)
	}
	if chat == nil {
		b.logger.Warn("nomination has no chat, emitting bare entry", "message", nom.ID)
		return domain.Window{Messages: []domain.Message{nom}}, nil
	}

	if nom.ThreadOriginator != "" {
		w, ok, err := b.threadWindow(ctx, chat, nom)
		if err != nil {
			return domain.Window{}, err
		}
		if ok {
			return w, nil
		}
		b.logger.Warn("thread originator not found, falling back to flat context",
			"message", nom.ID, "originator", nom.ThreadOriginator)
	}

	return b.flatWindow(ctx, chat, nom)
}

// threadWindow assembles pre-thread context, the originator, and the thread
// replies preceding the nomination. The second return value is false when
// the originator reference does not resolve.
func (b *Builder) threadWindow(ctx context.Context, chat *domain.Chat, nom domain.Message) (domain.Window, bool, error) {
	originator, err := b.store.MessageByGUID(ctx, nom.ThreadOriginator)
	if err != nil {
		return domain.Window{}, false, fmt.Errorf("resolve thread originator: %w", err)
	}
	if originator == nil {
		return domain.Window{}, false, nil
	}

	pre, err := b.store.ChatMessagesBefore(ctx, chat.ID, originator.Time, b.threadLookback, true)
	if err != nil {
		return domain.Window{}, false, fmt.Errorf("pre-thread context: %w", err)
	}

	replies, err := b.store.ThreadReplies(ctx, nom.ThreadOriginator, nom.Time)
	if err != nil {
		return domain.Window{}, false, fmt.Errorf("thread replies: %w", err)
	}

	msgs := make([]domain.Message, 0, len(pre)+len(replies)+2)
	msgs = append(msgs, pre...)
	msgs = append(msgs, *originator)
	msgs = append(msgs, replies...)
	msgs = append(msgs, nom)

	return domain.Window{
		Chat:        chat,
		Messages:    msgs,
		IsThread:    true,
		ThreadStart: len(pre),
	}, true, nil
}

func (b *Builder) flatWindow(ctx context.Context, chat *domain.Chat, nom domain.Message) (domain.Window, error) {
	msgs, err := b.store.ChatMessagesBefore(ctx, chat.ID, nom.Time, b.flatLookback, false)
	if err != nil {
		return domain.Window{}, fmt.Errorf("flat context: %w", err)
	}
	return domain.Window{
		Chat:     chat,
		Messages: append(msgs, nom),
	}, nil
}
