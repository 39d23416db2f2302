// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and the
// external adapters (infrastructure). The application depends on these
// abstractions only, never on concrete HTTP clients, databases, or files.
package ports

import (
	"context"

	"github.com/kaelos/kael-go/internal/domain"
)

// Adapter executes a single completion request against one backend and
// normalizes the outcome to a CompletionResult or a tagged CompletionError.
// Implementations must apply their own bounded timeout.
type Adapter interface {
	Provider() domain.Provider
	Execute(context.Context, domain.CompletionRequest) (domain.CompletionResult, error)
}

// AdapterFactory resolves the adapter for a catalog provider.
type AdapterFactory interface {
	ForProvider(domain.Provider) (Adapter, error)
}

// KeyStore provides access to the user's named API keys in the remote
// document store. Values are decrypted on the way out and encrypted on the
// way in; plaintext never crosses the network or touches disk.
type KeyStore interface {
	// List returns all stored credentials. An empty or missing remote
	// collection is an empty list, not an error.
	List(ctx context.Context, session *domain.Session) ([]domain.StoredCredential, error)
	// Save encrypts plaintext and upserts the document for label.
	Save(ctx context.Context, session *domain.Session, label, plaintext string) error
	// Delete removes a credential document. Deleting an absent id succeeds.
	Delete(ctx context.Context, session *domain.Session, id string) error
}

// Vault encrypts and decrypts secrets at rest. Token mode derives the key
// from a session token with a fixed application salt; passphrase mode embeds
// a random salt in the blob.
type Vault interface {
	EncryptWithToken(plaintext, token string) (string, error)
	DecryptWithToken(blob, token string) (string, error)
	EncryptWithPassphrase(plaintext, passphrase string) (string, error)
	DecryptWithPassphrase(blob, passphrase string) (string, error)
}

// PreferenceStore persists the user's provider ordering and hybrid assist
// toggle. Load never fails: missing or corrupt state yields the default.
type PreferenceStore interface {
	Load() domain.ProviderPreference
	Save(domain.ProviderPreference) error
}

// TranscriptRepository records chat exchanges locally.
type TranscriptRepository interface {
	Save(domain.ChatMessage) error
	Messages(sessionID string, limit int) ([]domain.ChatMessage, error)
	Clear() error
}

// SessionSource exposes the current authenticated session maintained by the
// external auth component. Current returns nil without error when the user
// is anonymous.
type SessionSource interface {
	Current() (*domain.Session, error)
}

// LocalProber checks whether the local inference server is reachable and
// can preload a model ahead of the first real request.
type LocalProber interface {
	Ping(context.Context) bool
	Warmup(ctx context.Context, model string)
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
