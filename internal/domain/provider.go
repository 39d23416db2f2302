// Package domain defines the core entities of the Kael assistant engine.
//
// This file contains the closed provider enumeration and its catalog data.
// The domain layer is independent of infrastructure concerns and represents
// pure business logic and data structures.
package domain

import "os"

// Provider identifies one backend capable of producing a text completion.
// The set is closed: every variant has a catalog entry below and exactly one
// adapter implementation in the infrastructure layer.
type Provider string

const (
	ProviderOllama     Provider = "ollama"
	ProviderMistral    Provider = "mistral"
	ProviderGemini     Provider = "gemini"
	ProviderCopilot    Provider = "copilot"
	ProviderCopilotCLI Provider = "copilot-cli"
	ProviderOffice365  Provider = "office365"
	ProviderGoogleOne  Provider = "googleone"
)

// catalogEntry is the static per-provider record: display label (also the
// credential document name in the remote key store), whether a credential is
// required before the adapter may run, the hardcoded default model, and the
// environment variable that overrides it.
type catalogEntry struct {
	label              string
	requiresCredential bool
	defaultModel       string
	modelEnvVar        string
}

var catalog = map[Provider]catalogEntry{
	ProviderOllama:     {label: "Ollama (Local)", requiresCredential: false, defaultModel: "mistral", modelEnvVar: "OLLAMA_MODEL"},
	ProviderMistral:    {label: "Mistral AI", requiresCredential: true, defaultModel: "mistral-small", modelEnvVar: "MISTRAL_MODEL"},
	ProviderGemini:     {label: "Google Gemini", requiresCredential: true, defaultModel: "gemini-1.5-pro", modelEnvVar: "GEMINI_MODEL"},
	ProviderCopilot:    {label: "GitHub Copilot", requiresCredential: true, defaultModel: "gpt-4o-mini", modelEnvVar: "GITHUB_COPILOT_MODEL"},
	ProviderCopilotCLI: {label: "GitHub Copilot CLI", requiresCredential: false, defaultModel: "gh-copilot", modelEnvVar: ""},
	ProviderOffice365:  {label: "Office 365 AI", requiresCredential: true, defaultModel: "gpt-4o-mini", modelEnvVar: "OFFICE365AI_MODEL"},
	ProviderGoogleOne:  {label: "Google One AI", requiresCredential: true, defaultModel: "gemini-1.5-pro", modelEnvVar: "GOOGLEONEAI_MODEL"},
}

// AllProviders lists the catalog in the default fallback order: local
// inference first, then cloud backends roughly by cost.
func AllProviders() []Provider {
	return []Provider{
		ProviderOllama,
		ProviderMistral,
		ProviderGemini,
		ProviderCopilot,
		ProviderCopilotCLI,
		ProviderOffice365,
		ProviderGoogleOne,
	}
}

// Known reports whether p is a catalog member.
func (p Provider) Known() bool {
	_, ok := catalog[p]
	return ok
}

// Label returns the human-readable provider name. Labels double as the
// credential name shown in settings and stored remotely.
func (p Provider) Label() string {
	return catalog[p].label
}

// RequiresCredential reports whether the provider's adapter needs an API key
// before it may be invoked.
func (p Provider) RequiresCredential() bool {
	return catalog[p].requiresCredential
}

// DefaultModel resolves the model used when a request leaves the model field
// empty: the provider's environment override when set, otherwise the
// hardcoded catalog default.
func (p Provider) DefaultModel() string {
	entry := catalog[p]
	if entry.modelEnvVar != "" {
		if v := os.Getenv(entry.modelEnvVar); v != "" {
			return v
		}
	}
	return entry.defaultModel
}

// ProviderByLabel maps a display label back to its provider. The second
// return is false for labels outside the catalog.
func ProviderByLabel(label string) (Provider, bool) {
	for p, entry := range catalog {
		if entry.label == label {
			return p, true
		}
	}
	return "", false
}
