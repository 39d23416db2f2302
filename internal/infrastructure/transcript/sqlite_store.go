// Package transcript persists chat exchanges locally. The SQLite store is
// the primary backend; when the database cannot be opened it degrades to the
// append-only jsonl file store.
package transcript

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/pkg/filesystem"
	"github.com/kaelos/kael-go/internal/ports"
)

// SQLiteStore persists the transcript in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the transcript database. An empty path
// selects ~/.kael/history/chat.db.
func NewSQLiteStore(path string) *SQLiteStore {
	if path == "" {
		path = filepath.Join(filesystem.UserHomeDir(), ".kael", "history", "chat.db")
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		// fallback to file store
		return &SQLiteStore{path: path}
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		return &SQLiteStore{path: path}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		author TEXT,
		text TEXT,
		created_at TEXT
	);`)
	return err
}

// Save inserts one transcript entry.
func (s *SQLiteStore) Save(message domain.ChatMessage) error {
	if s.db == nil {
		return (&FileStore{path: fallbackPath(s.path)}).Save(message)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO chat_messages (id, session_id, author, text, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		message.ID,
		message.SessionID,
		message.Author,
		message.Text,
		message.CreatedAt.Format(domain.TimestampFormat),
	)
	return err
}

// Messages returns up to limit entries in chronological order, optionally
// filtered to one chat session.
func (s *SQLiteStore) Messages(sessionID string, limit int) ([]domain.ChatMessage, error) {
	if s.db == nil {
		return (&FileStore{path: fallbackPath(s.path)}).Messages(sessionID, limit)
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT id, session_id, author, text, created_at FROM chat_messages")
	var args []interface{}
	if sessionID != "" {
		builder.WriteString(" WHERE session_id = ?")
		args = append(args, sessionID)
	}
	builder.WriteString(" ORDER BY datetime(created_at) DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var ts string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Author, &msg.Text, &ts); err != nil {
			return nil, err
		}
		if t, err := time.Parse(domain.TimestampFormat, ts); err == nil {
			msg.CreatedAt = t
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	reverse(messages)
	return messages, nil
}

// Clear deletes the whole transcript.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return (&FileStore{path: fallbackPath(s.path)}).Clear()
	}
	_, err := s.db.Exec("DELETE FROM chat_messages")
	return err
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func fallbackPath(dbPath string) string {
	return strings.TrimSuffix(dbPath, filepath.Ext(dbPath)) + ".jsonl"
}

func reverse(messages []domain.ChatMessage) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}

var _ ports.TranscriptRepository = (*SQLiteStore)(nil)
