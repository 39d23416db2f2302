// Package completion orchestrates the provider fallback chain.
package completion

import (
	"context"
	"errors"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/ports"
)

// Service walks an ordered chain of providers until one produces a
// completion. It is stateless and safe for concurrent use; the caller owns
// the chain order and the service never reorders it.
type Service struct {
	Factory  ports.AdapterFactory
	KeyStore ports.KeyStore
	Prober   ports.LocalProber
	Logger   ports.Logger
}

// Complete runs req against its provider, then walks chain on failure.
// Success short-circuits: at most one provider ever returns a result. When
// every attempt fails the returned error is an AggregateError carrying the
// ordered per-provider failures.
func (s *Service) Complete(ctx context.Context, req domain.CompletionRequest, session *domain.Session, chain []domain.FallbackCandidate) (domain.CompletionResult, error) {
	if s.Factory == nil || s.Logger == nil {
		return domain.CompletionResult{}, errors.New("completion.Service dependencies not satisfied")
	}
	if !req.Provider.Known() {
		return domain.CompletionResult{}, domain.NewCompletionError(
			domain.FailureProviderUnavailable, req.Provider, "unknown provider", nil)
	}

	keys := &keyResolver{service: s, session: session}
	var attempts []*domain.CompletionError

	result, cerr := s.attempt(ctx, req, keys)
	if cerr == nil {
		return result, nil
	}
	attempts = append(attempts, cerr)

	for _, candidate := range chain {
		if candidate.Provider == req.Provider || !candidate.Provider.Known() {
			continue
		}
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, domain.NewCompletionError(
				domain.FailureTimeout, candidate.Provider, "cancelled", err))
			break
		}
		next := domain.CompletionRequest{
			Provider:   candidate.Provider,
			Prompt:     req.Prompt,
			System:     req.System,
			Credential: candidate.Credential,
		}
		result, cerr := s.attempt(ctx, next, keys)
		if cerr == nil {
			s.Logger.Info("fallback provider answered", map[string]interface{}{
				"provider": string(candidate.Provider),
				"attempts": len(attempts) + 1,
			})
			return result, nil
		}
		attempts = append(attempts, cerr)
	}

	return domain.CompletionResult{}, &domain.AggregateError{Attempts: attempts}
}

// ContinueFrom is the hybrid-assist manual continuation: it walks remaining
// with the same resolution rules, skipping last. Used when the UI lets the
// user ask the next provider in line instead of accepting an answer.
func (s *Service) ContinueFrom(ctx context.Context, last domain.Provider, req domain.CompletionRequest, session *domain.Session, remaining []domain.FallbackCandidate) (domain.CompletionResult, error) {
	if s.Factory == nil || s.Logger == nil {
		return domain.CompletionResult{}, errors.New("completion.Service dependencies not satisfied")
	}

	keys := &keyResolver{service: s, session: session}
	var attempts []*domain.CompletionError

	for _, candidate := range remaining {
		if candidate.Provider == last || !candidate.Provider.Known() {
			continue
		}
		next := domain.CompletionRequest{
			Provider:   candidate.Provider,
			Prompt:     req.Prompt,
			System:     req.System,
			Credential: candidate.Credential,
		}
		result, cerr := s.attempt(ctx, next, keys)
		if cerr == nil {
			return result, nil
		}
		attempts = append(attempts, cerr)
	}

	return domain.CompletionResult{}, &domain.AggregateError{Attempts: attempts}
}

// PingLocal reports whether the local inference server is reachable.
func (s *Service) PingLocal(ctx context.Context) bool {
	if s.Prober == nil {
		return false
	}
	return s.Prober.Ping(ctx)
}

// Warmup preloads model on the local server when it is reachable.
func (s *Service) Warmup(ctx context.Context, model string) bool {
	if !s.PingLocal(ctx) {
		return false
	}
	if model == "" {
		model = domain.ProviderOllama.DefaultModel()
	}
	s.Prober.Warmup(ctx, model)
	return true
}

// attempt runs one provider with model and credential resolved. It returns a
// typed CompletionError so the caller can aggregate.
func (s *Service) attempt(ctx context.Context, req domain.CompletionRequest, keys *keyResolver) (domain.CompletionResult, *domain.CompletionError) {
	if req.Model == "" {
		req.Model = req.Provider.DefaultModel()
	}
	if req.Credential == "" && req.Provider.RequiresCredential() {
		req.Credential = keys.lookup(ctx, req.Provider.Label())
	}

	adapter, err := s.Factory.ForProvider(req.Provider)
	if err != nil {
		return domain.CompletionResult{}, domain.NewCompletionError(
			domain.FailureProviderUnavailable, req.Provider, "no adapter available", err)
	}

	s.Logger.Debug("calling provider", map[string]interface{}{
		"provider": string(req.Provider),
		"model":    req.Model,
	})

	result, err := adapter.Execute(ctx, req)
	if err == nil {
		return result, nil
	}

	var cerr *domain.CompletionError
	if !errors.As(err, &cerr) {
		cerr = domain.NewCompletionError(domain.FailureProviderUnavailable, req.Provider, err.Error(), err)
	}
	s.Logger.Debug("provider failed", map[string]interface{}{
		"provider": string(req.Provider),
		"kind":     string(cerr.Kind),
	})
	return domain.CompletionResult{}, cerr
}

// keyResolver fetches the stored credentials lazily: the key store is only
// hit once the walk reaches an attempt that actually needs a credential it
// does not already carry, and the result is memoized for the rest of the
// walk. A key-store failure degrades to an empty map so the chain can still
// reach credential-free providers.
type keyResolver struct {
	service  *Service
	session  *domain.Session
	resolved bool
	keys     map[string]string
}

func (r *keyResolver) lookup(ctx context.Context, label string) string {
	if !r.resolved {
		r.resolved = true
		r.keys = r.fetch(ctx)
	}
	return r.keys[label]
}

func (r *keyResolver) fetch(ctx context.Context) map[string]string {
	s := r.service
	if s.KeyStore == nil || r.session == nil {
		return nil
	}
	creds, err := s.KeyStore.List(ctx, r.session)
	if err != nil {
		s.Logger.Warn("key store unavailable, continuing without stored keys", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	keys := make(map[string]string, len(creds))
	for _, cred := range creds {
		keys[cred.Label] = cred.Value
	}
	return keys
}
