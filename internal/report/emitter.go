// Package report serializes review entries to the candidates JSON file and
// the human-readable review markdown.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"joty/internal/domain"
)

// minJokeLength is the rune count a context line must exceed to qualify as
// a likely-joke pick.
const minJokeLength = 5

// snippetLength caps the search hint emitted for jokes with attachments.
const snippetLength = 40

// Emitter renders review entries. Label is the award acronym used in
// headings (e.g. "JOTY").
type Emitter struct {
	Label string
}

// WriteJSON persists entries as an indented JSON array, order preserved.
func (e Emitter) WriteJSON(path string, entries []domain.ReviewEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal entries: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads previously persisted entries for the remap pass.
func ReadJSON(path string) ([]domain.ReviewEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read candidates file %s: %w", path, err)
	}
	var entries []domain.ReviewEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("cannot parse candidates file %s: %w", path, err)
	}
	return entries, nil
}

// WriteMarkdown renders and persists the review document.
func (e Emitter) WriteMarkdown(path string, entries []domain.ReviewEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	return os.WriteFile(path, []byte(e.RenderMarkdown(entries)), 0o644)
}

// RenderMarkdown builds the full review document: one section per entry,
// the annotated transcript in a fenced block, and the likely-joke callout.
func (e Emitter) RenderMarkdown(entries []domain.ReviewEntry) string {
	label := e.Label
	if label == "" {
		label = "JOTY"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s Candidates\n\n", label)
	sb.WriteString("Review each " + label + " and its context. Delete entries that aren't actual nominations.\n")
	sb.WriteString("For jokes with images, search the quoted text on your phone to screenshot.\n\n")
	sb.WriteString("---\n\n")

	for _, entry := range entries {
		threadMarker := ""
		if entry.IsThread {
			threadMarker = " 🧵"
		}
		fmt.Fprintf(&sb, "## %s #%d — %s%s\n\n", label, entry.ID, entry.Time, threadMarker)
		fmt.Fprintf(&sb, "**Chat:** %s  \n", entry.ChatName)
		fmt.Fprintf(&sb, "**Nominated by:** %s\n\n", entry.Sender)
		sb.WriteString("**Context:**\n```\n")

		for _, msg := range entry.Context {
			indent := ""
			if msg.InThread {
				indent = "    ↳ "
			}
			if msg.IsJoty {
				fmt.Fprintf(&sb, "%s%s %s: ⭐ %s ⭐\n", indent, msg.Time, msg.Sender, msg.Text)
				continue
			}
			img := ""
			if msg.HasImage {
				img = " 📷"
			}
			fmt.Fprintf(&sb, "%s%s %s: %s%s\n", indent, msg.Time, msg.Sender, msg.Text, img)
		}
		sb.WriteString("```\n\n")

		if joke := LikelyJoke(entry); joke != nil {
			fmt.Fprintf(&sb, "**Likely joke:** %q — %s", joke.Text, joke.Sender)
			if joke.HasImage {
				fmt.Fprintf(&sb, " 📷\n\n*Search on phone:* `%s`", snippet(joke.Text))
			}
			sb.WriteString("\n\n")
		}

		sb.WriteString("---\n\n")
	}

	return sb.String()
}

// LikelyJoke picks the last context line with sufficiently long text that is
// not the nomination itself. A recency guess, not a classifier; nil when no
// line qualifies.
func LikelyJoke(entry domain.ReviewEntry) *domain.ContextEntry {
	for i := len(entry.Context) - 1; i >= 0; i-- {
		msg := entry.Context[i]
		if msg.IsJoty {
			continue
		}
		if utf8.RuneCountInString(msg.Text) > minJokeLength {
			return &entry.Context[i]
		}
	}
	return nil
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return string(runes[:snippetLength])
}
