package keystore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/infrastructure/vault"
	"github.com/kaelos/kael-go/internal/pkg/logger"
)

func testSession() *domain.Session {
	return &domain.Session{UserID: "user-1", Email: "u@example.com", Token: "session-token"}
}

// fakeFirestore is an in-memory stand-in for the Firestore REST surface.
type fakeFirestore struct {
	mu   sync.Mutex
	docs map[string]firestoreFields

	failing bool
	lists   int
}

func (f *fakeFirestore) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.failing {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer session-token" {
			t.Errorf("Authorization = %q", got)
		}

		base := "/projects/proj/databases/(default)/documents/users/user-1/api_keys"
		switch {
		case r.Method == http.MethodGet && r.URL.Path == base:
			f.lists++
			if len(f.docs) == 0 {
				// Firestore answers 404 for an empty collection.
				w.WriteHeader(http.StatusNotFound)
				return
			}
			var list firestoreList
			for id, fields := range f.docs {
				list.Documents = append(list.Documents, firestoreDoc{
					Name:   base + "/" + id,
					Fields: fields,
				})
			}
			json.NewEncoder(w).Encode(list)
		case r.Method == http.MethodPatch:
			var doc firestoreDoc
			if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.docs[filepath.Base(r.URL.Path)] = doc.Fields
			fmt.Fprint(w, "{}")
		case r.Method == http.MethodDelete:
			if _, ok := f.docs[filepath.Base(r.URL.Path)]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(f.docs, filepath.Base(r.URL.Path))
			fmt.Fprint(w, "{}")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestStore(t *testing.T) (*Firestore, *fakeFirestore) {
	fake := &fakeFirestore{docs: map[string]firestoreFields{}}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	store := NewFirestore(domain.RemoteSettings{
		FirebaseProject: "proj",
		BaseURL:         srv.URL,
	}, vault.New(), logger.NewStd(false))
	return store, fake
}

func TestListEmptyCollectionIsNotAnError(t *testing.T) {
	store, _ := newTestStore(t)

	creds, err := store.List(context.Background(), testSession())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(creds) != 0 {
		t.Fatalf("List() = %v, want empty", creds)
	}
}

func TestSaveThenListRoundTrip(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()
	sess := testSession()

	if err := store.Save(ctx, sess, "Mistral AI", "sk-mistral-123"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, ok := fake.docs["mistral_ai"]; !ok {
		t.Fatalf("document id not normalized, got %v", fake.docs)
	}
	// The stored value must not be the plaintext.
	if fake.docs["mistral_ai"].Value.StringValue == "sk-mistral-123" {
		t.Fatal("credential stored in plaintext")
	}

	creds, err := store.List(ctx, sess)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(creds) != 1 || creds[0].Label != "Mistral AI" || creds[0].Value != "sk-mistral-123" {
		t.Fatalf("List() = %+v", creds)
	}
	if creds[0].ID != "mistral_ai" {
		t.Fatalf("ID = %q, want mistral_ai", creds[0].ID)
	}
}

func TestSaveOverwritesPriorValue(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	sess := testSession()

	if err := store.Save(ctx, sess, "Google Gemini", "old"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, sess, "Google Gemini", "new"); err != nil {
		t.Fatal(err)
	}
	creds, err := store.List(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(creds) != 1 || creds[0].Value != "new" {
		t.Fatalf("List() = %+v, want single overwritten value", creds)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	sess := testSession()

	if err := store.Save(ctx, sess, "Mistral AI", "v"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, sess, "mistral_ai"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, sess, "mistral_ai"); err != nil {
		t.Fatalf("second Delete() error = %v, want nil", err)
	}
}

func TestRemoteFailureIsTyped(t *testing.T) {
	store, fake := newTestStore(t)
	fake.failing = true

	_, err := store.List(context.Background(), testSession())
	if domain.KindOf(err) != domain.FailureRemoteStore {
		t.Fatalf("kind = %q, want %q", domain.KindOf(err), domain.FailureRemoteStore)
	}
}

func TestCachedServesLastGoodListWhenRemoteFails(t *testing.T) {
	store, fake := newTestStore(t)
	cachePath := filepath.Join(t.TempDir(), "keys.enc")
	cached := NewCached(store, vault.New(), cachePath, logger.NewStd(false))
	ctx := context.Background()
	sess := testSession()

	if err := cached.Save(ctx, sess, "Mistral AI", "sk-123"); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.List(ctx, sess); err != nil {
		t.Fatal(err)
	}

	fake.failing = true
	creds, err := cached.List(ctx, sess)
	if err != nil {
		t.Fatalf("List() with failing remote error = %v, want cached result", err)
	}
	if len(creds) != 1 || creds[0].Value != "sk-123" {
		t.Fatalf("cached List() = %+v", creds)
	}
}

func TestFreshRemoteListSupersedesCache(t *testing.T) {
	store, _ := newTestStore(t)
	cachePath := filepath.Join(t.TempDir(), "keys.enc")
	cached := NewCached(store, vault.New(), cachePath, logger.NewStd(false))
	ctx := context.Background()
	sess := testSession()

	if err := cached.Save(ctx, sess, "Mistral AI", "old"); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.List(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, sess, "Mistral AI", "new"); err != nil {
		t.Fatal(err)
	}

	creds, err := cached.List(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if creds[0].Value != "new" {
		t.Fatalf("List() = %q, remote result must win over cache", creds[0].Value)
	}
}
