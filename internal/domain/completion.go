package domain

// CompletionRequest is one attempt to obtain a text completion from a single
// provider. Model may be left empty by callers; the orchestrator resolves it
// to the provider's default before any adapter runs.
type CompletionRequest struct {
	Provider   Provider
	Model      string
	Prompt     string
	Credential string
	System     string
}

// CompletionResult is a successful completion. It is only ever fully
// populated; adapters never return a partial result alongside an error.
type CompletionResult struct {
	Provider Provider
	Content  string
}

// FallbackCandidate is one entry of the ordered fallback chain: a provider to
// try plus an optional explicit credential. When Credential is empty the
// orchestrator resolves it from the remote key store.
type FallbackCandidate struct {
	Provider   Provider
	Credential string
}
