package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/pkg/logger"
	"github.com/kaelos/kael-go/internal/ports"
)

type spyAdapter struct {
	provider domain.Provider
	result   domain.CompletionResult
	err      error
	calls    int
	lastReq  domain.CompletionRequest
}

func (a *spyAdapter) Provider() domain.Provider { return a.provider }

func (a *spyAdapter) Execute(_ context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	a.calls++
	a.lastReq = req
	if a.err != nil {
		return domain.CompletionResult{}, a.err
	}
	return a.result, nil
}

type stubFactory struct {
	adapters map[domain.Provider]*spyAdapter
}

func (f *stubFactory) ForProvider(p domain.Provider) (ports.Adapter, error) {
	adapter, ok := f.adapters[p]
	if !ok {
		return nil, fmt.Errorf("no adapter for %s", p)
	}
	return adapter, nil
}

type stubKeyStore struct {
	creds []domain.StoredCredential
	err   error
	lists int
}

func (s *stubKeyStore) List(context.Context, *domain.Session) ([]domain.StoredCredential, error) {
	s.lists++
	return s.creds, s.err
}

func (s *stubKeyStore) Save(context.Context, *domain.Session, string, string) error { return nil }
func (s *stubKeyStore) Delete(context.Context, *domain.Session, string) error       { return nil }

func unavailable(p domain.Provider) error {
	return domain.NewCompletionError(domain.FailureProviderUnavailable, p, "provider unreachable", nil)
}

func newService(factory *stubFactory, keys *stubKeyStore) *Service {
	return &Service{
		Factory:  factory,
		KeyStore: keys,
		Logger:   logger.NewStd(false),
	}
}

func TestCompleteShortCircuitsOnFirstSuccess(t *testing.T) {
	ollama := &spyAdapter{provider: domain.ProviderOllama, result: domain.CompletionResult{Provider: domain.ProviderOllama, Content: "local answer"}}
	mistral := &spyAdapter{provider: domain.ProviderMistral}
	svc := newService(&stubFactory{adapters: map[domain.Provider]*spyAdapter{
		domain.ProviderOllama:  ollama,
		domain.ProviderMistral: mistral,
	}}, nil)

	result, err := svc.Complete(context.Background(),
		domain.CompletionRequest{Provider: domain.ProviderOllama, Prompt: "hi"},
		nil,
		[]domain.FallbackCandidate{{Provider: domain.ProviderMistral, Credential: "k"}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if result.Content != "local answer" {
		t.Fatalf("Content = %q", result.Content)
	}
	if ollama.calls != 1 || mistral.calls != 0 {
		t.Fatalf("calls = %d/%d, success must short-circuit", ollama.calls, mistral.calls)
	}
}

func TestCompleteFallsBackWhenInitialFails(t *testing.T) {
	ollama := &spyAdapter{provider: domain.ProviderOllama, err: unavailable(domain.ProviderOllama)}
	mistral := &spyAdapter{provider: domain.ProviderMistral, result: domain.CompletionResult{Provider: domain.ProviderMistral, Content: "cloud answer"}}
	svc := newService(&stubFactory{adapters: map[domain.Provider]*spyAdapter{
		domain.ProviderOllama:  ollama,
		domain.ProviderMistral: mistral,
	}}, nil)

	result, err := svc.Complete(context.Background(),
		domain.CompletionRequest{Provider: domain.ProviderOllama, Prompt: "hi"},
		nil,
		[]domain.FallbackCandidate{{Provider: domain.ProviderMistral, Credential: "key"}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if result.Provider != domain.ProviderMistral || result.Content != "cloud answer" {
		t.Fatalf("result = %+v", result)
	}
	if mistral.lastReq.Credential != "key" {
		t.Fatalf("candidate credential not forwarded, got %q", mistral.lastReq.Credential)
	}
	if mistral.lastReq.Model != domain.ProviderMistral.DefaultModel() {
		t.Fatalf("fallback model = %q, want provider default", mistral.lastReq.Model)
	}
}

func TestCompleteNeverRetriesInitialProviderFromChain(t *testing.T) {
	ollama := &spyAdapter{provider: domain.ProviderOllama, err: unavailable(domain.ProviderOllama)}
	svc := newService(&stubFactory{adapters: map[domain.Provider]*spyAdapter{
		domain.ProviderOllama: ollama,
	}}, nil)

	_, err := svc.Complete(context.Background(),
		domain.CompletionRequest{Provider: domain.ProviderOllama, Prompt: "hi"},
		nil,
		[]domain.FallbackCandidate{{Provider: domain.ProviderOllama}})
	if err == nil {
		t.Fatal("want aggregate error")
	}
	if ollama.calls != 1 {
		t.Fatalf("calls = %d, initial provider must not be retried", ollama.calls)
	}
}

func TestCompleteRecordsMissingCredentialAndProceeds(t *testing.T) {
	ollama := &spyAdapter{provider: domain.ProviderOllama, result: domain.CompletionResult{Provider: domain.ProviderOllama, Content: "ok"}}
	gemini := &spyAdapter{provider: domain.ProviderGemini, err: domain.NewCompletionError(
		domain.FailureMissingCredential, domain.ProviderGemini, "no API key configured", nil)}
	svc := newService(&stubFactory{adapters: map[domain.Provider]*spyAdapter{
		domain.ProviderGemini: gemini,
		domain.ProviderOllama: ollama,
	}}, nil)

	result, err := svc.Complete(context.Background(),
		domain.CompletionRequest{Provider: domain.ProviderGemini, Prompt: "hi"},
		nil,
		[]domain.FallbackCandidate{{Provider: domain.ProviderOllama}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if result.Content != "ok" {
		t.Fatalf("Content = %q", result.Content)
	}
	if gemini.calls != 1 {
		t.Fatalf("gemini calls = %d", gemini.calls)
	}
}

func TestCompleteAggregatesAllFailures(t *testing.T) {
	ollama := &spyAdapter{provider: domain.ProviderOllama, err: unavailable(domain.ProviderOllama)}
	mistral := &spyAdapter{provider: domain.ProviderMistral, err: domain.NewCompletionError(
		domain.FailureTimeout, domain.ProviderMistral, "request timed out", nil)}
	svc := newService(&stubFactory{adapters: map[domain.Provider]*spyAdapter{
		domain.ProviderOllama:  ollama,
		domain.ProviderMistral: mistral,
	}}, nil)

	_, err := svc.Complete(context.Background(),
		domain.CompletionRequest{Provider: domain.ProviderOllama, Prompt: "hi"},
		nil,
		[]domain.FallbackCandidate{{Provider: domain.ProviderMistral, Credential: "k"}})

	var agg *domain.AggregateError
	if !errors.As(err, &agg) {
		t.Fatalf("err = %T, want AggregateError", err)
	}
	if len(agg.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(agg.Attempts))
	}
	if agg.Attempts[0].Provider != domain.ProviderOllama || agg.Attempts[1].Provider != domain.ProviderMistral {
		t.Fatalf("attempt order wrong: %+v", agg.Attempts)
	}
	if want := "Mistral AI: request timed out"; !strings.Contains(agg.Error(), want) {
		t.Fatalf("Error() = %q, want it to carry %q", agg.Error(), want)
	}
}

func TestCompleteResolvesCredentialFromKeyStoreByLabel(t *testing.T) {
	mistral := &spyAdapter{provider: domain.ProviderMistral, result: domain.CompletionResult{Provider: domain.ProviderMistral, Content: "ok"}}
	keys := &stubKeyStore{creds: []domain.StoredCredential{
		{ID: "mistral_ai", Label: "Mistral AI", Value: "stored-key"},
	}}
	svc := newService(&stubFactory{adapters: map[domain.Provider]*spyAdapter{
		domain.ProviderMistral: mistral,
	}}, keys)

	session := &domain.Session{UserID: "u", Token: "t"}
	if _, err := svc.Complete(context.Background(),
		domain.CompletionRequest{Provider: domain.ProviderMistral, Prompt: "hi"},
		session, nil); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if mistral.lastReq.Credential != "stored-key" {
		t.Fatalf("Credential = %q, want stored key", mistral.lastReq.Credential)
	}
	if keys.lists != 1 {
		t.Fatalf("List called %d times, want once per walk", keys.lists)
	}
}

func TestCompleteSkipsKeyStoreForCredentialFreeWalk(t *testing.T) {
	ollama := &spyAdapter{provider: domain.ProviderOllama, result: domain.CompletionResult{Provider: domain.ProviderOllama, Content: "local"}}
	keys := &stubKeyStore{creds: []domain.StoredCredential{
		{ID: "mistral_ai", Label: "Mistral AI", Value: "stored-key"},
	}}
	svc := newService(&stubFactory{adapters: map[domain.Provider]*spyAdapter{
		domain.ProviderOllama: ollama,
	}}, keys)

	session := &domain.Session{UserID: "u", Token: "t"}
	if _, err := svc.Complete(context.Background(),
		domain.CompletionRequest{Provider: domain.ProviderOllama, Prompt: "hi"},
		session, nil); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if keys.lists != 0 {
		t.Fatalf("List called %d times for a credential-free walk, want 0", keys.lists)
	}
}

func TestCompleteDefersKeyStoreUntilCredentialNeeded(t *testing.T) {
	ollama := &spyAdapter{provider: domain.ProviderOllama, err: unavailable(domain.ProviderOllama)}
	mistral := &spyAdapter{provider: domain.ProviderMistral, err: domain.NewCompletionError(
		domain.FailureProviderUnavailable, domain.ProviderMistral, "provider unreachable", nil)}
	gemini := &spyAdapter{provider: domain.ProviderGemini, result: domain.CompletionResult{Provider: domain.ProviderGemini, Content: "ok"}}
	keys := &stubKeyStore{creds: []domain.StoredCredential{
		{ID: "mistral_ai", Label: "Mistral AI", Value: "mk"},
		{ID: "google_gemini", Label: "Google Gemini", Value: "gk"},
	}}
	svc := newService(&stubFactory{adapters: map[domain.Provider]*spyAdapter{
		domain.ProviderOllama:  ollama,
		domain.ProviderMistral: mistral,
		domain.ProviderGemini:  gemini,
	}}, keys)

	session := &domain.Session{UserID: "u", Token: "t"}
	result, err := svc.Complete(context.Background(),
		domain.CompletionRequest{Provider: domain.ProviderOllama, Prompt: "hi"},
		session,
		[]domain.FallbackCandidate{
			{Provider: domain.ProviderMistral},
			{Provider: domain.ProviderGemini},
		})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if result.Provider != domain.ProviderGemini {
		t.Fatalf("result = %+v", result)
	}
	if mistral.lastReq.Credential != "mk" || gemini.lastReq.Credential != "gk" {
		t.Fatalf("credentials = %q/%q, want stored keys", mistral.lastReq.Credential, gemini.lastReq.Credential)
	}
	if keys.lists != 1 {
		t.Fatalf("List called %d times, want once per walk", keys.lists)
	}
}

func TestCompleteTreatsKeyStoreFailureAsNoKeys(t *testing.T) {
	gemini := &spyAdapter{provider: domain.ProviderGemini, err: domain.NewCompletionError(
		domain.FailureMissingCredential, domain.ProviderGemini, "no API key configured", nil)}
	ollama := &spyAdapter{provider: domain.ProviderOllama, result: domain.CompletionResult{Provider: domain.ProviderOllama, Content: "ok"}}
	keys := &stubKeyStore{err: errors.New("firestore down")}
	svc := newService(&stubFactory{adapters: map[domain.Provider]*spyAdapter{
		domain.ProviderGemini: gemini,
		domain.ProviderOllama: ollama,
	}}, keys)

	session := &domain.Session{UserID: "u", Token: "t"}
	result, err := svc.Complete(context.Background(),
		domain.CompletionRequest{Provider: domain.ProviderGemini, Prompt: "hi"},
		session,
		[]domain.FallbackCandidate{{Provider: domain.ProviderOllama}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if result.Provider != domain.ProviderOllama {
		t.Fatalf("result = %+v, chain must proceed past key store failure", result)
	}
	if gemini.lastReq.Credential != "" {
		t.Fatalf("Credential = %q, want empty", gemini.lastReq.Credential)
	}
}

func TestCompleteUsesRequestModelOnlyForInitialProvider(t *testing.T) {
	ollama := &spyAdapter{provider: domain.ProviderOllama, err: unavailable(domain.ProviderOllama)}
	mistral := &spyAdapter{provider: domain.ProviderMistral, result: domain.CompletionResult{Provider: domain.ProviderMistral, Content: "ok"}}
	svc := newService(&stubFactory{adapters: map[domain.Provider]*spyAdapter{
		domain.ProviderOllama:  ollama,
		domain.ProviderMistral: mistral,
	}}, nil)

	if _, err := svc.Complete(context.Background(),
		domain.CompletionRequest{Provider: domain.ProviderOllama, Model: "llama3", Prompt: "hi"},
		nil,
		[]domain.FallbackCandidate{{Provider: domain.ProviderMistral, Credential: "k"}}); err != nil {
		t.Fatal(err)
	}
	if ollama.lastReq.Model != "llama3" {
		t.Fatalf("initial model = %q", ollama.lastReq.Model)
	}
	if mistral.lastReq.Model != domain.ProviderMistral.DefaultModel() {
		t.Fatalf("fallback model = %q, want its own default", mistral.lastReq.Model)
	}
}

func TestContinueFromRejectsUnsatisfiedDependencies(t *testing.T) {
	svc := &Service{}
	_, err := svc.ContinueFrom(context.Background(), domain.ProviderOllama,
		domain.CompletionRequest{Prompt: "hi"},
		nil,
		[]domain.FallbackCandidate{{Provider: domain.ProviderMistral, Credential: "k"}})
	if err == nil {
		t.Fatal("want error for miswired service")
	}
}

func TestContinueFromSkipsLastProvider(t *testing.T) {
	ollama := &spyAdapter{provider: domain.ProviderOllama}
	mistral := &spyAdapter{provider: domain.ProviderMistral, result: domain.CompletionResult{Provider: domain.ProviderMistral, Content: "next"}}
	svc := newService(&stubFactory{adapters: map[domain.Provider]*spyAdapter{
		domain.ProviderOllama:  ollama,
		domain.ProviderMistral: mistral,
	}}, nil)

	result, err := svc.ContinueFrom(context.Background(), domain.ProviderOllama,
		domain.CompletionRequest{Prompt: "hi"},
		nil,
		[]domain.FallbackCandidate{
			{Provider: domain.ProviderOllama},
			{Provider: domain.ProviderMistral, Credential: "k"},
		})
	if err != nil {
		t.Fatalf("ContinueFrom() error = %v", err)
	}
	if result.Content != "next" {
		t.Fatalf("Content = %q", result.Content)
	}
	if ollama.calls != 0 {
		t.Fatalf("last provider called %d times, want 0", ollama.calls)
	}
}
