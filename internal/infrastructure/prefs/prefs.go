// Package prefs persists the user's provider ordering as a small JSON file
// under the application home directory.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/pkg/filesystem"
	"github.com/kaelos/kael-go/internal/ports"
)

type preferenceFile struct {
	Order        []string `json:"order"`
	HybridAssist bool     `json:"hybrid_assist"`
}

// FileStore reads and writes ~/.kael/providers.json. Load never fails: a
// missing or corrupt file yields the default ordering.
type FileStore struct {
	path string
	log  ports.Logger
}

func NewFileStore(path string, log ports.Logger) *FileStore {
	if path == "" {
		path = filepath.Join(filesystem.UserHomeDir(), ".kael", "providers.json")
	}
	return &FileStore{path: path, log: log}
}

func (s *FileStore) Load() domain.ProviderPreference {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.DefaultPreference()
	}

	var file preferenceFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.log.Warn("provider preference file unreadable, using defaults", map[string]interface{}{
			"path": s.path,
		})
		return domain.DefaultPreference()
	}

	pref := domain.ProviderPreference{HybridAssist: file.HybridAssist}
	for _, name := range file.Order {
		// Entries are display labels; bare provider ids are accepted too.
		if provider, ok := domain.ProviderByLabel(name); ok {
			pref.Order = append(pref.Order, provider)
			continue
		}
		pref.Order = append(pref.Order, domain.Provider(name))
	}
	return pref.Sanitized()
}

func (s *FileStore) Save(pref domain.ProviderPreference) error {
	pref = pref.Sanitized()
	file := preferenceFile{HybridAssist: pref.HybridAssist}
	for _, provider := range pref.Order {
		file.Order = append(file.Order, provider.Label())
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return filesystem.AtomicWrite(s.path, data, 0o644)
}

var _ ports.PreferenceStore = (*FileStore)(nil)
