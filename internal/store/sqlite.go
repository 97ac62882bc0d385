package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"joty/internal/domain"

	_ "modernc.org/sqlite"
)

// appleEpochOffset is the number of seconds between the Unix epoch and
// Apple's Core Data epoch (2001-01-01 UTC). Message timestamps are stored
// as nanoseconds since the Apple epoch.
const appleEpochOffset = 978307200

// SQLiteStore implements domain.MessageStore over a local message-history
// database. The database is opened read-only and never mutated.
type SQLiteStore struct {
	db               *sql.DB
	reactionPrefixes []string
	logger           *slog.Logger
}

func Open(dbPath string, reactionPrefixes []string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("cannot open message store %s: %w", dbPath, err)
	}

	// Set connection pool (single connection for SQLite)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open message store %s: %w", dbPath, err)
	}

	return &SQLiteStore{db: db, reactionPrefixes: reactionPrefixes, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// messageColumns is the shared projection for message queries. The handle
// join resolves the raw sender identifier; self-sent messages have none.
const messageColumns = `
	m.ROWID,
	m.guid,
	m.date,
	COALESCE(m.text, ''),
	m.is_from_me,
	COALESCE(h.id, ''),
	COALESCE(m.thread_originator_guid, ''),
	COALESCE(m.cache_has_attachments, 0)`

// likeEscaper neutralizes LIKE wildcards in the configured keyword so it
// always matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *SQLiteStore) NominationCandidates(ctx context.Context, keyword string, cutoff time.Time) ([]domain.Message, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT` + messageColumns + `
		FROM message m
		LEFT JOIN handle h ON m.handle_id = h.ROWID
		WHERE m.text IS NOT NULL
		AND LOWER(m.text) LIKE ? ESCAPE '\'
		AND m.date >= ?`)
	args := []any{"%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%", timeToApple(cutoff)}
	args = s.appendReactionExclusions(&sb, args)
	sb.WriteString(` ORDER BY m.date`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query nomination candidates: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (s *SQLiteStore) ChatForMessage(ctx context.Context, messageID int64) (*domain.Chat, error) {
	var (
		chat        domain.Chat
		displayName sql.NullString
		identifier  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT c.ROWID, c.display_name, c.chat_identifier
		 FROM chat c
		 JOIN chat_message_join cmj ON c.ROWID = cmj.chat_id
		 WHERE cmj.message_id = ?`, messageID,
	).Scan(&chat.ID, &displayName, &identifier)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chat lookup for message %d: %w", messageID, err)
	}

	chat.Name = displayName.String
	if chat.Name == "" {
		chat.Name = identifier.String
	}
	return &chat, nil
}

func (s *SQLiteStore) MessageByGUID(ctx context.Context, guid string) (*domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT`+messageColumns+`
		 FROM message m
		 LEFT JOIN handle h ON m.handle_id = h.ROWID
		 WHERE m.guid = ?`, guid,
	)
	if err != nil {
		return nil, fmt.Errorf("message lookup by guid: %w", err)
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return &msgs[0], nil
}

func (s *SQLiteStore) ChatMessagesBefore(ctx context.Context, chatID int64, t time.Time, limit int, excludeThreaded bool) ([]domain.Message, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT` + messageColumns + `
		FROM message m
		JOIN chat_message_join cmj ON m.ROWID = cmj.message_id
		LEFT JOIN handle h ON m.handle_id = h.ROWID
		WHERE cmj.chat_id = ?
		AND m.date < ?
		AND m.text IS NOT NULL
		AND m.text != ''`)
	args := []any{chatID, timeToApple(t)}
	args = s.appendReactionExclusions(&sb, args)
	if excludeThreaded {
		sb.WriteString(` AND m.thread_originator_guid IS NULL`)
	}
	// Descending with a limit fetches the nearest preceding messages; the
	// caller gets them back in chronological order.
	sb.WriteString(` ORDER BY m.date DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

func (s *SQLiteStore) ThreadReplies(ctx context.Context, originatorGUID string, before time.Time) ([]domain.Message, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT` + messageColumns + `
		FROM message m
		LEFT JOIN handle h ON m.handle_id = h.ROWID
		WHERE m.thread_originator_guid = ?
		AND m.date < ?
		AND m.text IS NOT NULL
		AND m.text != ''`)
	args := []any{originatorGUID, timeToApple(before)}
	args = s.appendReactionExclusions(&sb, args)
	sb.WriteString(` ORDER BY m.date`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query thread replies: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// appendReactionExclusions adds a NOT LIKE clause per configured tapback
// prefix and returns the extended argument list.
func (s *SQLiteStore) appendReactionExclusions(sb *strings.Builder, args []any) []any {
	for _, prefix := range s.reactionPrefixes {
		sb.WriteString(` AND m.text NOT LIKE ?`)
		args = append(args, prefix+"%")
	}
	return args
}

func scanMessages(rows *sql.Rows) ([]domain.Message, error) {
	var msgs []domain.Message
	for rows.Next() {
		var (
			m      domain.Message
			date   int64
			hasAtt int
		)
		if err := rows.Scan(&m.ID, &m.GUID, &date, &m.Text, &m.FromMe,
			&m.Handle, &m.ThreadOriginator, &hasAtt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Time = appleToTime(date)
		m.HasAttachment = hasAtt != 0
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func reverse(msgs []domain.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

// appleToTime converts nanoseconds since the Apple epoch to local time.
func appleToTime(ns int64) time.Time {
	return time.Unix(ns/1e9+appleEpochOffset, ns%1e9)
}

// timeToApple converts a time to nanoseconds since the Apple epoch.
func timeToApple(t time.Time) int64 {
	return (t.Unix()-appleEpochOffset)*1e9 + int64(t.Nanosecond())
}
