package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/pkg/filesystem"
)

// FileLoader loads YAML configuration from ~/.kael/config.yaml (overridable
// via KAEL_CONFIG). A missing file is replaced with written defaults.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load reads and hydrates the configuration.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return applyEnv(cfg), nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}

	return applyEnv(hydrateDefaults(cfg)), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("KAEL_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".kael", "config.yaml")
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return filesystem.AtomicWrite(path, raw, domain.SecureFilePermissions)
}

func defaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Endpoints: domain.EndpointSettings{
			Ollama:            "http://127.0.0.1:11434",
			Mistral:           "https://api.mistral.ai/v1/chat/completions",
			Gemini:            "https://generativelanguage.googleapis.com/v1beta",
			Copilot:           "https://models.inference.ai.azure.com/chat/completions",
			CopilotAPIVersion: "2024-10-01-preview",
		},
		Transcript: domain.TranscriptSettings{
			DatabasePath: filepath.Join(filesystem.UserHomeDir(), ".kael", "history", "chat.db"),
		},
		TimeoutSeconds: 25,
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	def := defaultConfig()
	if cfg.Endpoints.Ollama == "" {
		cfg.Endpoints.Ollama = def.Endpoints.Ollama
	}
	if cfg.Endpoints.Mistral == "" {
		cfg.Endpoints.Mistral = def.Endpoints.Mistral
	}
	if cfg.Endpoints.Gemini == "" {
		cfg.Endpoints.Gemini = def.Endpoints.Gemini
	}
	if cfg.Endpoints.Copilot == "" {
		cfg.Endpoints.Copilot = def.Endpoints.Copilot
	}
	if cfg.Endpoints.CopilotAPIVersion == "" {
		cfg.Endpoints.CopilotAPIVersion = def.Endpoints.CopilotAPIVersion
	}
	if cfg.Transcript.DatabasePath == "" {
		cfg.Transcript.DatabasePath = def.Transcript.DatabasePath
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = def.TimeoutSeconds
	}
	return cfg
}

// applyEnv layers environment overrides on top of the file, matching the
// variables the desktop build reads.
func applyEnv(cfg domain.Config) domain.Config {
	if v := os.Getenv("OLLAMA_ENDPOINT"); v != "" {
		cfg.Endpoints.Ollama = v
	}
	if v := os.Getenv("MISTRAL_ENDPOINT"); v != "" {
		cfg.Endpoints.Mistral = v
	}
	if v := os.Getenv("GEMINI_ENDPOINT"); v != "" {
		cfg.Endpoints.Gemini = v
	}
	if v := os.Getenv("GITHUB_COPILOT_ENDPOINT"); v != "" {
		cfg.Endpoints.Copilot = v
	}
	if v := os.Getenv("GITHUB_COPILOT_API_VERSION"); v != "" {
		cfg.Endpoints.CopilotAPIVersion = v
	}
	if v := os.Getenv("OFFICE365AI_ENDPOINT"); v != "" {
		cfg.Endpoints.Office365 = v
	}
	if v := os.Getenv("GOOGLEONEAI_ENDPOINT"); v != "" {
		cfg.Endpoints.GoogleOne = v
	}
	if v := os.Getenv("KAEL_FIREBASE_PROJECT"); v != "" {
		cfg.Remote.FirebaseProject = v
	}
	return cfg
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}
