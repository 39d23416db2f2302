package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kaelos/kael-go/internal/app"
	"github.com/kaelos/kael-go/internal/domain"
)

func newKeysCommand(container *app.Container) *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage stored provider API keys",
	}

	keysCmd.AddCommand(
		newKeysListCommand(container),
		newKeysSetCommand(container),
		newKeysRemoveCommand(container),
	)
	return keysCmd
}

func newKeysListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored keys (values are never printed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := requireSession(container)
			if err != nil {
				return err
			}
			creds, err := container.KeyStore.List(cmd.Context(), session)
			if err != nil {
				return err
			}
			if len(creds) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No keys stored.")
				return nil
			}
			for _, cred := range creds {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", cred.Label, maskValue(cred.Value))
			}
			return nil
		},
	}
}

func newKeysSetCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "set <provider> <value>",
		Short: "Store an API key for a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := requireSession(container)
			if err != nil {
				return err
			}
			label, err := resolveProviderLabel(args[0])
			if err != nil {
				return err
			}
			if err := container.KeyStore.Save(cmd.Context(), session, label, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored key for %s.\n", label)
			return nil
		},
	}
}

func newKeysRemoveCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <provider>",
		Short: "Remove a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := requireSession(container)
			if err != nil {
				return err
			}
			label, err := resolveProviderLabel(args[0])
			if err != nil {
				return err
			}
			if err := container.KeyStore.Delete(cmd.Context(), session, domain.CredentialDocID(label)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed key for %s.\n", label)
			return nil
		},
	}
}

func requireSession(container *app.Container) (*domain.Session, error) {
	session, err := container.Sessions.Current()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New("not signed in; keys live in your cloud account")
	}
	return session, nil
}

func resolveProviderLabel(name string) (string, error) {
	provider, ok := domain.ProviderByLabel(name)
	if !ok {
		provider = domain.Provider(strings.ToLower(name))
	}
	if !provider.Known() {
		return "", fmt.Errorf("unknown provider %q", name)
	}
	if !provider.RequiresCredential() {
		return "", fmt.Errorf("%s does not use an API key", provider.Label())
	}
	return provider.Label(), nil
}

func maskValue(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + value[len(value)-4:]
}
