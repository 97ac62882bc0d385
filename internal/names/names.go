// Package names turns raw handle identifiers into human display names.
package names

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"joty/internal/domain"

	"gopkg.in/yaml.v3"
)

// Table maps normalized display forms (phone suffix like "(3660)", email
// local-part, etc.) to final human names. Values must not themselves be
// keys, which keeps applying the table idempotent.
type Table map[string]string

// LoadTable reads a YAML name map. A missing file is not an error: the
// table is simply empty.
func LoadTable(path string, logger *slog.Logger) (Table, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug("name map does not exist, skipping", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read name map: %w", err)
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse name map %s: %w", path, err)
	}
	return table, nil
}

// Map resolves a display name through the table, passing unmapped names
// through unchanged.
func (t Table) Map(name string) string {
	if mapped, ok := t[name]; ok {
		return mapped
	}
	return name
}

// Apply rewrites sender fields of persisted entries in place. Running it
// twice with the same table yields the same result as running it once.
func (t Table) Apply(entries []domain.ReviewEntry) {
	if len(t) == 0 {
		return
	}
	for i := range entries {
		entries[i].Sender = t.Map(entries[i].Sender)
		for j := range entries[i].Context {
			entries[i].Context[j].Sender = t.Map(entries[i].Context[j].Sender)
		}
	}
}

// Formatter normalizes raw sender identifiers for display. The optional
// Table is consulted after the fallback formatting, so mapped names come
// out final on the first pass.
type Formatter struct {
	SelfName string
	Table    Table
}

// Display returns the display name for a raw handle identifier.
// Fallback rules: self-sent messages use SelfName; phone-shaped identifiers
// become their last four digits in parentheses; email-shaped identifiers
// keep the local part; anything else passes through, or "Unknown" if absent.
func (f Formatter) Display(handle string, fromMe bool) string {
	name := f.fallback(handle, fromMe)
	return f.Table.Map(name)
}

func (f Formatter) fallback(handle string, fromMe bool) string {
	if fromMe {
		if f.SelfName != "" {
			return f.SelfName
		}
		return "Me"
	}
	if handle == "" {
		return "Unknown"
	}
	if phoneShaped(handle) {
		return "(" + handle[len(handle)-4:] + ")"
	}
	if at := strings.Index(handle, "@"); at > 0 {
		return handle[:at]
	}
	return handle
}

// phoneShaped reports whether the identifier looks like an international
// phone number: a leading + followed by at least four digits.
func phoneShaped(s string) bool {
	if !strings.HasPrefix(s, "+") || len(s) < 5 {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
