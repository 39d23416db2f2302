package keystore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/pkg/filesystem"
	"github.com/kaelos/kael-go/internal/ports"
)

// Cached decorates a KeyStore with a best-effort on-disk copy of the last
// successful List, served when the remote store is unreachable. The cache is
// encrypted at rest with the session-token-keyed vault, so a lost laptop does
// not leak API keys, and it is never preferred over a live remote answer.
type Cached struct {
	remote ports.KeyStore
	vault  ports.Vault
	path   string
	log    ports.Logger
}

// NewCached wraps remote with the offline cache. An empty path selects
// ~/.kael/cache/keys.enc.
func NewCached(remote ports.KeyStore, vault ports.Vault, path string, log ports.Logger) *Cached {
	if path == "" {
		path = filepath.Join(filesystem.UserHomeDir(), ".kael", "cache", "keys.enc")
	}
	return &Cached{remote: remote, vault: vault, path: path, log: log}
}

// List prefers the remote store; a fresh result overwrites the cache. When
// the remote call fails the cache is decrypted and served instead, and only
// if that also fails does the caller see the remote error.
func (c *Cached) List(ctx context.Context, session *domain.Session) ([]domain.StoredCredential, error) {
	creds, err := c.remote.List(ctx, session)
	if err == nil {
		c.store(session, creds)
		return creds, nil
	}

	cached, ok := c.load(session)
	if !ok {
		return nil, err
	}
	c.log.Warn("remote key store unavailable, serving cached keys", map[string]interface{}{
		"count": len(cached),
	})
	return cached, nil
}

// Save writes through and drops the cache so stale values cannot outlive an
// overwrite.
func (c *Cached) Save(ctx context.Context, session *domain.Session, label, plaintext string) error {
	if err := c.remote.Save(ctx, session, label, plaintext); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

// Delete writes through and drops the cache.
func (c *Cached) Delete(ctx context.Context, session *domain.Session, id string) error {
	if err := c.remote.Delete(ctx, session, id); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

func (c *Cached) store(session *domain.Session, creds []domain.StoredCredential) {
	if session == nil || session.Token == "" {
		return
	}
	raw, err := json.Marshal(creds)
	if err != nil {
		return
	}
	blob, err := c.vault.EncryptWithToken(string(raw), session.Token)
	if err != nil {
		return
	}
	if err := filesystem.AtomicWrite(c.path, []byte(blob), domain.SecureFilePermissions); err != nil {
		c.log.Warn("key cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (c *Cached) load(session *domain.Session) ([]domain.StoredCredential, bool) {
	if session == nil || session.Token == "" {
		return nil, false
	}
	blob, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}
	raw, err := c.vault.DecryptWithToken(string(blob), session.Token)
	if err != nil {
		return nil, false
	}
	var creds []domain.StoredCredential
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, false
	}
	return creds, true
}

func (c *Cached) invalidate() {
	_ = os.Remove(c.path)
}

var _ ports.KeyStore = (*Cached)(nil)
