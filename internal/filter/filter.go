// Package filter decides whether a keyword-matched message is an actual
// nomination or just commentary about the award.
package filter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"joty/internal/domain"
)

// DefaultMaxLength is the trimmed rune cap above which a message is treated
// as commentary rather than a nomination.
const DefaultMaxLength = 20

// Heuristic rejects meta-commentary and over-long messages.
type Heuristic struct {
	metaPatterns []*regexp.Regexp
	maxLength    int
}

func New(metaPatterns []string, maxLength int) (*Heuristic, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	compiled := make([]*regexp.Regexp, 0, len(metaPatterns))
	for _, pattern := range metaPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("meta pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return &Heuristic{metaPatterns: compiled, maxLength: maxLength}, nil
}

// Actual reports whether text reads like a real nomination. Meta patterns
// are matched against the lower-cased, trimmed text.
func (h *Heuristic) Actual(text string) bool {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	for _, re := range h.metaPatterns {
		if re.MatchString(lower) {
			return false
		}
	}
	return utf8.RuneCountInString(trimmed) <= h.maxLength
}

// Keep filters candidates, preserving their order. The predicate is
// deterministic per message, so Keep is idempotent.
func (h *Heuristic) Keep(msgs []domain.Message) []domain.Message {
	kept := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if h.Actual(m.Text) {
			kept = append(kept, m)
		}
	}
	return kept
}
