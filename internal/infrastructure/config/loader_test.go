package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaultsWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Endpoints.Ollama != "http://127.0.0.1:11434" {
		t.Fatalf("Ollama endpoint = %q", cfg.Endpoints.Ollama)
	}
	if cfg.TimeoutSeconds != 25 {
		t.Fatalf("TimeoutSeconds = %d", cfg.TimeoutSeconds)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("defaults not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("permissions = %v, want 0600", info.Mode().Perm())
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("directory holds %d entries, temp file left behind", len(entries))
	}
}

func TestLoadHydratesZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "config_format_version: \"1\"\nendpoints:\n  ollama: http://10.0.0.5:11434\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Endpoints.Ollama != "http://10.0.0.5:11434" {
		t.Fatalf("explicit value lost: %q", cfg.Endpoints.Ollama)
	}
	if cfg.Endpoints.Mistral == "" || cfg.Endpoints.CopilotAPIVersion == "" {
		t.Fatalf("zero values not hydrated: %+v", cfg.Endpoints)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("GEMINI_ENDPOINT", "http://gemini.test")
	t.Setenv("KAEL_FIREBASE_PROJECT", "proj-from-env")

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Endpoints.Gemini != "http://gemini.test" {
		t.Fatalf("Gemini = %q", cfg.Endpoints.Gemini)
	}
	if cfg.Remote.FirebaseProject != "proj-from-env" {
		t.Fatalf("FirebaseProject = %q", cfg.Remote.FirebaseProject)
	}
}

func TestLoadSurfacesParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\tnot yaml ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("corrupt config must error")
	}
}
