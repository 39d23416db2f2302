package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kaelos/kael-go/internal/domain"
)

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// geminiProvider speaks the Generative Language generateContent API. The key
// travels in a header, never in the URL, so transport errors cannot echo it.
type geminiProvider struct {
	endpoint   string
	httpClient *http.Client
}

func newGeminiProvider(endpoint string, client *http.Client) *geminiProvider {
	if endpoint == "" {
		endpoint = defaultGeminiEndpoint
	}
	return &geminiProvider{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: client,
	}
}

func (g *geminiProvider) Provider() domain.Provider {
	return domain.ProviderGemini
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *geminiProvider) Execute(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	if err := requireCredential(req); err != nil {
		return domain.CompletionResult{}, err
	}

	payload := geminiGenerateRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.CompletionResult{}, malformedErr(domain.ProviderGemini, "encode request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.CompletionResult{}, transportErr(domain.ProviderGemini, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", req.Credential)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return domain.CompletionResult{}, transportErr(domain.ProviderGemini, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return domain.CompletionResult{}, statusErr(domain.ProviderGemini, resp)
	}

	var decoded geminiGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.CompletionResult{}, malformedErr(domain.ProviderGemini, "decode response", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return domain.CompletionResult{}, malformedErr(domain.ProviderGemini, "response carried no candidates", nil)
	}
	content := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
	if content == "" {
		return domain.CompletionResult{}, malformedErr(domain.ProviderGemini, "empty candidate text", nil)
	}
	return domain.CompletionResult{Provider: domain.ProviderGemini, Content: content}, nil
}
