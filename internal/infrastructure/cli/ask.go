package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kaelos/kael-go/assets"
	"github.com/kaelos/kael-go/internal/app"
	"github.com/kaelos/kael-go/internal/domain"
)

func newAskCommand(container *app.Container) *cobra.Command {
	var (
		providerFlag string
		model        string
		system       string
		sessionID    string
		timeout      time.Duration
		noFallback   bool
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Ask the provider chain for a completion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			prompt := strings.Join(args, " ")
			pref := container.Prefs.Load()

			initial, err := resolveInitialProvider(providerFlag, pref)
			if err != nil {
				return err
			}

			session, err := container.Sessions.Current()
			if err != nil {
				container.Logger.Warn("session unavailable, continuing anonymously", map[string]interface{}{
					"error": err.Error(),
				})
			}

			if system == "" {
				system = assets.DefaultPersona
			}

			req := domain.CompletionRequest{
				Provider: initial,
				Model:    model,
				Prompt:   prompt,
				System:   system,
			}

			var chain []domain.FallbackCandidate
			if !noFallback {
				for _, provider := range pref.Order {
					chain = append(chain, domain.FallbackCandidate{Provider: provider})
				}
			}

			spinner := NewSpinner(os.Stderr)
			spinner.Start()
			result, err := container.CompletionService.Complete(ctx, req, session, chain)
			spinner.Stop()

			if err != nil {
				var agg *domain.AggregateError
				if errors.As(err, &agg) {
					fmt.Fprintln(os.Stderr, agg.Detail())
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Content)
			if result.Provider != initial {
				fmt.Fprintf(os.Stderr, "(answered by %s)\n", result.Provider.Label())
			}

			recordExchange(container, sessionID, prompt, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "Provider to try first (defaults to the saved order)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Override model for the first provider")
	cmd.Flags().StringVar(&system, "system", "", "Override the system prompt")
	cmd.Flags().StringVar(&sessionID, "session", "cli", "Transcript session id")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall request deadline")
	cmd.Flags().BoolVar(&noFallback, "no-fallback", false, "Fail instead of trying other providers")

	return cmd
}

func resolveInitialProvider(flag string, pref domain.ProviderPreference) (domain.Provider, error) {
	if flag == "" {
		if len(pref.Order) > 0 {
			return pref.Order[0], nil
		}
		return domain.ProviderOllama, nil
	}
	if provider, ok := domain.ProviderByLabel(flag); ok {
		return provider, nil
	}
	provider := domain.Provider(strings.ToLower(flag))
	if !provider.Known() {
		return "", fmt.Errorf("unknown provider %q (see 'kael providers list')", flag)
	}
	return provider, nil
}

// recordExchange saves the prompt/reply pair. Transcript failures never fail
// the command.
func recordExchange(container *app.Container, sessionID, prompt string, result domain.CompletionResult) {
	if container.Transcript == nil {
		return
	}
	for _, msg := range []domain.ChatMessage{
		domain.NewChatMessage(sessionID, "user", prompt),
		domain.NewChatMessage(sessionID, "model", result.Content),
	} {
		if err := container.Transcript.Save(msg); err != nil {
			container.Logger.Warn("transcript write failed", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
	}
}
