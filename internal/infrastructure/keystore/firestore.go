// Package keystore stores the user's named API keys in a Firestore-backed
// document collection, encrypting values with the vault before they leave the
// process.
package keystore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/ports"
)

const defaultBaseURL = "https://firestore.googleapis.com/v1"

// Firestore talks to the users/{uid}/api_keys collection over the Firestore
// REST surface, bearer-authenticated with the session token.
type Firestore struct {
	project    string
	baseURL    string
	vault      ports.Vault
	httpClient *http.Client
	log        ports.Logger
}

// NewFirestore builds the remote store from the remote settings.
func NewFirestore(remote domain.RemoteSettings, vault ports.Vault, log ports.Logger) *Firestore {
	base := remote.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Firestore{
		project:    remote.FirebaseProject,
		baseURL:    strings.TrimSuffix(base, "/"),
		vault:      vault,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

// Firestore REST document shapes: {fields:{name:{stringValue},value:{stringValue}}}.

type firestoreString struct {
	StringValue string `json:"stringValue"`
}

type firestoreFields struct {
	Name  firestoreString `json:"name"`
	Value firestoreString `json:"value"`
}

type firestoreDoc struct {
	Name   string          `json:"name,omitempty"`
	Fields firestoreFields `json:"fields"`
}

type firestoreList struct {
	Documents []firestoreDoc `json:"documents"`
}

// List fetches and decrypts all stored credentials. An empty or missing
// collection (Firestore answers 404) is an empty list. Values that fail to
// decrypt are skipped rather than surfaced as plaintext garbage.
func (s *Firestore) List(ctx context.Context, session *domain.Session) ([]domain.StoredCredential, error) {
	if err := s.check(session); err != nil {
		return nil, err
	}

	body, status, err := s.do(ctx, http.MethodGet, s.collectionURL(session.UserID), session.Token, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return []domain.StoredCredential{}, nil
	}
	if status < 200 || status >= 300 {
		return nil, remoteErr(fmt.Sprintf("key list failed (HTTP %d)", status), nil)
	}

	var list firestoreList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, remoteErr("key list response is not valid JSON", err)
	}

	creds := make([]domain.StoredCredential, 0, len(list.Documents))
	for _, doc := range list.Documents {
		plain, err := s.vault.DecryptWithToken(doc.Fields.Value.StringValue, session.Token)
		if err != nil {
			s.log.Warn("skipping undecryptable credential", map[string]interface{}{
				"id": docID(doc.Name),
			})
			continue
		}
		creds = append(creds, domain.StoredCredential{
			ID:    docID(doc.Name),
			Label: doc.Fields.Name.StringValue,
			Value: plain,
		})
	}
	return creds, nil
}

// Save encrypts plaintext and upserts the document for label. The document id
// is the normalized label, so saving twice overwrites the prior value.
func (s *Firestore) Save(ctx context.Context, session *domain.Session, label, plaintext string) error {
	if err := s.check(session); err != nil {
		return err
	}

	encrypted, err := s.vault.EncryptWithToken(plaintext, session.Token)
	if err != nil {
		return err
	}
	doc := firestoreDoc{Fields: firestoreFields{
		Name:  firestoreString{StringValue: label},
		Value: firestoreString{StringValue: encrypted},
	}}
	payload, err := json.Marshal(doc)
	if err != nil {
		return remoteErr("encode credential document", err)
	}

	target := s.collectionURL(session.UserID) + "/" + url.PathEscape(domain.CredentialDocID(label))
	_, status, err := s.do(ctx, http.MethodPatch, target, session.Token, payload)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return remoteErr(fmt.Sprintf("key save failed (HTTP %d)", status), nil)
	}
	return nil
}

// Delete removes a credential document. Deleting an id that no longer exists
// succeeds, so the operation is idempotent.
func (s *Firestore) Delete(ctx context.Context, session *domain.Session, id string) error {
	if err := s.check(session); err != nil {
		return err
	}

	target := s.collectionURL(session.UserID) + "/" + url.PathEscape(id)
	_, status, err := s.do(ctx, http.MethodDelete, target, session.Token, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return nil
	}
	if status < 200 || status >= 300 {
		return remoteErr(fmt.Sprintf("key delete failed (HTTP %d)", status), nil)
	}
	return nil
}

func (s *Firestore) check(session *domain.Session) error {
	if session == nil || session.Token == "" {
		return remoteErr("not signed in", nil)
	}
	if s.project == "" {
		return remoteErr("no Firebase project configured (set KAEL_FIREBASE_PROJECT or remote.firebase_project)", nil)
	}
	return nil
}

func (s *Firestore) collectionURL(uid string) string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents/users/%s/api_keys",
		s.baseURL, url.PathEscape(s.project), url.PathEscape(uid))
}

func (s *Firestore) do(ctx context.Context, method, target, token string, payload []byte) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, 0, remoteErr("build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, remoteErr("remote store unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, remoteErr("read response", err)
	}
	return data, resp.StatusCode, nil
}

func docID(name string) string {
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

func remoteErr(msg string, err error) error {
	return domain.NewCompletionError(domain.FailureRemoteStore, "", msg, err)
}

var _ ports.KeyStore = (*Firestore)(nil)
