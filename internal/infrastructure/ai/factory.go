// Package ai contains the provider adapters: one per catalog entry, all
// normalizing their backend's wire shape to a CompletionResult or a tagged
// CompletionError.
package ai

import (
	"fmt"
	"net/http"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/ports"
)

const (
	defaultMistralEndpoint   = "https://api.mistral.ai/v1/chat/completions"
	defaultCopilotEndpoint   = "https://models.inference.ai.azure.com/chat/completions"
	defaultCopilotAPIVersion = "2024-10-01-preview"
)

// Factory builds the adapter for each catalog provider. Cloud adapters share
// one bounded client; the local adapter gets a far more generous deadline
// because model load dominates first-request latency.
type Factory struct {
	endpoints domain.EndpointSettings
	cloud     *http.Client
	local     *http.Client
}

func NewFactory(endpoints domain.EndpointSettings) *Factory {
	return &Factory{
		endpoints: endpoints,
		cloud:     &http.Client{Timeout: domain.DefaultCloudTimeout},
		local:     &http.Client{Timeout: domain.DefaultLocalTimeout},
	}
}

func (f *Factory) ForProvider(provider domain.Provider) (ports.Adapter, error) {
	switch provider {
	case domain.ProviderOllama:
		return f.ollama(), nil
	case domain.ProviderMistral:
		endpoint := valueOrDefault(f.endpoints.Mistral, defaultMistralEndpoint)
		return newChatProvider(provider, endpoint, "", f.cloud), nil
	case domain.ProviderGemini:
		return newGeminiProvider(f.endpoints.Gemini, f.cloud), nil
	case domain.ProviderCopilot:
		endpoint := valueOrDefault(f.endpoints.Copilot, defaultCopilotEndpoint)
		version := valueOrDefault(f.endpoints.CopilotAPIVersion, defaultCopilotAPIVersion)
		return newChatProvider(provider, endpoint, version, f.cloud), nil
	case domain.ProviderCopilotCLI:
		return newCopilotCLIProvider(), nil
	case domain.ProviderOffice365:
		return newChatProvider(provider, f.endpoints.Office365, "", f.cloud), nil
	case domain.ProviderGoogleOne:
		return newChatProvider(provider, f.endpoints.GoogleOne, "", f.cloud), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// Prober exposes the local server health check for warmup and diagnostics.
func (f *Factory) Prober() ports.LocalProber {
	return f.ollama()
}

func (f *Factory) ollama() *ollamaProvider {
	return newOllamaProvider(f.endpoints.Ollama, f.local)
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

var _ ports.AdapterFactory = (*Factory)(nil)
