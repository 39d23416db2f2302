package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kaelos/kael-go/internal/domain"
)

// chatMessage is one turn of an OpenAI-style chat completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (r chatCompletionResponse) firstMessage() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Choices[0].Message.Content)
}

func toChatMessages(req domain.CompletionRequest) []chatMessage {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})
	return messages
}

// chatProvider speaks the OpenAI chat completions dialect. Mistral, GitHub
// Copilot (via the Models endpoint), Office 365 AI and Google One AI all
// share this wire shape and differ only in endpoint and query string.
type chatProvider struct {
	provider   domain.Provider
	endpoint   string
	apiVersion string
	httpClient *http.Client
}

func newChatProvider(provider domain.Provider, endpoint, apiVersion string, client *http.Client) *chatProvider {
	return &chatProvider{
		provider:   provider,
		endpoint:   endpoint,
		apiVersion: apiVersion,
		httpClient: client,
	}
}

func (p *chatProvider) Provider() domain.Provider {
	return p.provider
}

func (p *chatProvider) Execute(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	if err := requireCredential(req); err != nil {
		return domain.CompletionResult{}, err
	}
	if p.endpoint == "" {
		return domain.CompletionResult{}, domain.NewCompletionError(
			domain.FailureProviderUnavailable, p.provider, "no endpoint configured", nil)
	}

	payload := chatCompletionRequest{
		Model:    req.Model,
		Messages: toChatMessages(req),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.CompletionResult{}, malformedErr(p.provider, "encode request", err)
	}

	endpoint := p.endpoint
	if p.apiVersion != "" {
		endpoint += "?api-version=" + p.apiVersion
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.CompletionResult{}, transportErr(p.provider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Credential != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Credential)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return domain.CompletionResult{}, transportErr(p.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return domain.CompletionResult{}, statusErr(p.provider, resp)
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.CompletionResult{}, malformedErr(p.provider, "decode response", err)
	}
	content := decoded.firstMessage()
	if content == "" {
		return domain.CompletionResult{}, malformedErr(p.provider, "response carried no choices", nil)
	}
	return domain.CompletionResult{Provider: p.provider, Content: content}, nil
}
