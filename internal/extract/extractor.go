// Package extract runs the full batch: query candidates, reconstruct each
// context window, normalize senders, and assemble review entries.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"joty/internal/domain"
	"joty/internal/filter"
	"joty/internal/names"
	"joty/internal/window"
)

const unknownChat = "Unknown Chat"

// Config wires the extractor's collaborators.
type Config struct {
	Store         domain.MessageStore
	Filter        *filter.Heuristic
	Window        *window.Builder
	Names         names.Formatter
	Keyword       string
	Cutoff        time.Time
	ExcludedChats []string
	Logger        *slog.Logger
}

type Extractor struct {
	store    domain.MessageStore
	filter   *filter.Heuristic
	window   *window.Builder
	names    names.Formatter
	keyword  string
	cutoff   time.Time
	excluded map[string]bool
	logger   *slog.Logger
}

func New(cfg Config) *Extractor {
	excluded := make(map[string]bool, len(cfg.ExcludedChats))
	for _, name := range cfg.ExcludedChats {
		excluded[name] = true
	}
	return &Extractor{
		store:    cfg.Store,
		filter:   cfg.Filter,
		window:   cfg.Window,
		names:    cfg.Names,
		keyword:  cfg.Keyword,
		cutoff:   cfg.Cutoff,
		excluded: excluded,
		logger:   cfg.Logger,
	}
}

// Run produces one review entry per surviving nomination. Entries from
// excluded chats are dropped before numbering, so IDs are dense from 1.
func (e *Extractor) Run(ctx context.Context) ([]domain.ReviewEntry, error) {
	candidates, err := e.store.NominationCandidates(ctx, e.keyword, e.cutoff)
	if err != nil {
		return nil, fmt.Errorf("query nominations: %w", err)
	}
	candidates = e.filter.Keep(candidates)
	e.logger.Info("nomination candidates", "count", len(candidates))

	var entries []domain.ReviewEntry
	threads := 0
	for _, nom := range candidates {
		w, err := e.window.Build(ctx, nom)
		if err != nil {
			return nil, fmt.Errorf("context for message %d: %w", nom.ID, err)
		}

		chatName := unknownChat
		if w.Chat != nil {
			chatName = w.Chat.Name
		}
		if e.excluded[chatName] {
			e.logger.Debug("skipping excluded chat", "chat", chatName, "message", nom.ID)
			continue
		}

		entries = append(entries, e.render(len(entries)+1, nom, w, chatName))
		if w.IsThread {
			threads++
		}
	}

	e.logger.Info("extraction complete",
		"entries", len(entries), "threads", threads, "flat", len(entries)-threads)
	return entries, nil
}

func (e *Extractor) render(id int, nom domain.Message, w domain.Window, chatName string) domain.ReviewEntry {
	last := len(w.Messages) - 1
	ctxEntries := make([]domain.ContextEntry, 0, len(w.Messages))
	for i, m := range w.Messages {
		entry := domain.ContextEntry{
			Time:     m.Time.Format("15:04"),
			Sender:   e.names.Display(m.Handle, m.FromMe),
			Text:     m.Text,
			HasImage: m.HasAttachment,
			InThread: w.IsThread && i >= w.ThreadStart,
		}
		if i == last {
			// The nomination closes the sequence; its attachment flag is
			// irrelevant to the transcript.
			entry.IsJoty = true
			entry.Text = strings.TrimSpace(m.Text)
			entry.HasImage = false
		}
		ctxEntries = append(ctxEntries, entry)
	}

	return domain.ReviewEntry{
		ID:       id,
		Time:     nom.Time.Format("2006-01-02 15:04"),
		Text:     strings.TrimSpace(nom.Text),
		Sender:   e.names.Display(nom.Handle, nom.FromMe),
		ChatName: chatName,
		IsThread: w.IsThread,
		Context:  ctxEntries,
	}
}
