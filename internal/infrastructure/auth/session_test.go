package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMissingSessionFileMeansAnonymous(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "session.json"))
	session, err := source.Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if session != nil {
		t.Fatalf("session = %+v, want nil", session)
	}
}

func TestSessionFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	raw := `{"user_id":"u1","email":"u@example.com","token":"tok"}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	session, err := NewFileSource(path).Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if session == nil || session.UserID != "u1" || session.Token != "tok" {
		t.Fatalf("session = %+v", session)
	}
}

func TestTokenlessSessionIsAnonymous(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"user_id":"u1"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	session, err := NewFileSource(path).Current()
	if err != nil || session != nil {
		t.Fatalf("got %+v, %v; want nil, nil", session, err)
	}
}

func TestCorruptSessionFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileSource(path).Current(); err == nil {
		t.Fatal("corrupt session file must error")
	}
}
