// Package auth reads the session state maintained by the sign-in shell. The
// engine itself never writes session tokens to disk.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/pkg/filesystem"
	"github.com/kaelos/kael-go/internal/ports"
)

type sessionFile struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// FileSource reads ~/.kael/session.json. A missing file means the user is
// anonymous, which is not an error.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	if path == "" {
		path = filepath.Join(filesystem.UserHomeDir(), ".kael", "session.json")
	}
	return &FileSource{path: path}
}

func (s *FileSource) Current() (*domain.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if file.Token == "" {
		return nil, nil
	}
	return &domain.Session{
		UserID: file.UserID,
		Email:  file.Email,
		Token:  file.Token,
	}, nil
}

var _ ports.SessionSource = (*FileSource)(nil)
