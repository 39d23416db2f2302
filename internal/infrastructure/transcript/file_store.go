package transcript

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/pkg/filesystem"
	"github.com/kaelos/kael-go/internal/ports"
)

type fileRecord struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// FileStore appends transcript entries to a jsonl file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a transcript store under ~/.kael/history/chat.jsonl.
func NewFileStore() *FileStore {
	return &FileStore{
		path: filepath.Join(filesystem.UserHomeDir(), ".kael", "history", "chat.jsonl"),
	}
}

func (f *FileStore) Save(message domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(fileRecord{
		ID:        message.ID,
		SessionID: message.SessionID,
		Author:    message.Author,
		Text:      message.Text,
		CreatedAt: message.CreatedAt.Format(domain.TimestampFormat),
	})
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = file.Write(data)
	return err
}

func (f *FileStore) Messages(sessionID string, limit int) ([]domain.ChatMessage, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	var messages []domain.ChatMessage
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		var rec fileRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if sessionID != "" && rec.SessionID != sessionID {
			continue
		}
		msg := domain.ChatMessage{
			ID:        rec.ID,
			SessionID: rec.SessionID,
			Author:    rec.Author,
			Text:      rec.Text,
		}
		if t, err := time.Parse(domain.TimestampFormat, rec.CreatedAt); err == nil {
			msg.CreatedAt = t
		}
		messages = append(messages, msg)
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// Clear removes the transcript file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

var _ ports.TranscriptRepository = (*FileStore)(nil)
