package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kaelos/kael-go/internal/domain"
)

const defaultOllamaEndpoint = "http://127.0.0.1:11434"

// ollamaProvider talks to a local Ollama server via its native generate API.
// It also doubles as the health prober the orchestrator uses to decide
// whether local inference is worth attempting at all.
type ollamaProvider struct {
	endpoint   string
	httpClient *http.Client
}

func newOllamaProvider(endpoint string, client *http.Client) *ollamaProvider {
	if endpoint == "" {
		endpoint = defaultOllamaEndpoint
	}
	return &ollamaProvider{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: client,
	}
}

func (o *ollamaProvider) Provider() domain.Provider {
	return domain.ProviderOllama
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

func (o *ollamaProvider) Execute(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	payload := ollamaGenerateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.CompletionResult{}, malformedErr(domain.ProviderOllama, "encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return domain.CompletionResult{}, transportErr(domain.ProviderOllama, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return domain.CompletionResult{}, transportErr(domain.ProviderOllama, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return domain.CompletionResult{}, statusErr(domain.ProviderOllama, resp)
	}

	var decoded ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.CompletionResult{}, malformedErr(domain.ProviderOllama, "decode response", err)
	}
	content := strings.TrimSpace(decoded.Response)
	if content == "" {
		return domain.CompletionResult{}, malformedErr(domain.ProviderOllama, "empty response", nil)
	}
	return domain.CompletionResult{Provider: domain.ProviderOllama, Content: content}, nil
}

// Ping reports whether the server answers its tags listing within the probe
// deadline. Used for warmup and hybrid assist routing.
func (o *ollamaProvider) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, domain.DefaultProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}

// Warmup asks the server to load the model with an empty prompt so the first
// real request does not pay the cold start. Failures are ignored.
func (o *ollamaProvider) Warmup(ctx context.Context, model string) {
	payload := ollamaGenerateRequest{Model: model, Stream: false}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
