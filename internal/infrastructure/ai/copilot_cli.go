package ai

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/kaelos/kael-go/internal/domain"
)

// copilotCLIProvider shells out to the GitHub CLI's copilot extension. It
// needs no stored credential: the gh binary carries its own auth state.
type copilotCLIProvider struct {
	binary string
}

func newCopilotCLIProvider() *copilotCLIProvider {
	return &copilotCLIProvider{binary: "gh"}
}

func (c *copilotCLIProvider) Provider() domain.Provider {
	return domain.ProviderCopilotCLI
}

func (c *copilotCLIProvider) Execute(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	if _, err := exec.LookPath(c.binary); err != nil {
		return domain.CompletionResult{}, domain.NewCompletionError(
			domain.FailureToolNotInstalled, domain.ProviderCopilotCLI,
			"GitHub CLI not found; install gh and the gh-copilot extension", err)
	}

	ctx, cancel := context.WithTimeout(ctx, domain.DefaultToolTimeout)
	defer cancel()

	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + prompt
	}

	cmd := exec.CommandContext(ctx, c.binary, "copilot", "suggest", "-t", "shell", prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.CompletionResult{}, domain.NewCompletionError(
				domain.FailureTimeout, domain.ProviderCopilotCLI, "gh copilot timed out", err)
		}
		msg := "gh copilot failed"
		if detail := firstLine(stderr.String()); detail != "" {
			msg += ": " + detail
		}
		return domain.CompletionResult{}, domain.NewCompletionError(
			domain.FailureProviderUnavailable, domain.ProviderCopilotCLI, msg, err)
	}

	content := parseSuggestion(stdout.String())
	if content == "" {
		return domain.CompletionResult{}, malformedErr(domain.ProviderCopilotCLI, "no suggestion in gh output", nil)
	}
	return domain.CompletionResult{Provider: domain.ProviderCopilotCLI, Content: content}, nil
}

// parseSuggestion extracts the command block gh prints after "Suggestion:".
// When the marker is absent the whole trimmed output is the answer.
func parseSuggestion(output string) string {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "Suggestion:") {
			continue
		}
		var block []string
		for _, rest := range lines[i+1:] {
			trimmed := strings.TrimSpace(rest)
			if trimmed == "" && len(block) > 0 {
				break
			}
			if trimmed != "" {
				block = append(block, trimmed)
			}
		}
		return strings.Join(block, "\n")
	}
	return strings.TrimSpace(output)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
