package domain

import "strings"

// StoredCredential is one named API key after decryption. Value lives in
// memory only; it is persisted exclusively in encrypted form.
type StoredCredential struct {
	ID    string
	Label string
	Value string
}

// Session is the slice of the authenticated user the engine borrows from the
// external auth component: enough to key vault derivation and remote store
// lookups. The engine never persists it.
type Session struct {
	UserID string
	Email  string
	Token  string
}

// CredentialDocID normalizes a display label into the remote document id:
// lowercased, spaces replaced with underscores. "Mistral AI" -> "mistral_ai".
func CredentialDocID(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}
