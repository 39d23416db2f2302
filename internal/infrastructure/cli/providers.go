package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kaelos/kael-go/internal/app"
	"github.com/kaelos/kael-go/internal/domain"
)

func newProvidersCommand(container *app.Container) *cobra.Command {
	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "Inspect and reorder the fallback chain",
	}

	providersCmd.AddCommand(
		newProvidersListCommand(container),
		newProvidersOrderCommand(container),
		newProvidersHybridCommand(container),
	)
	return providersCmd
}

func newProvidersListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the saved provider order",
		RunE: func(cmd *cobra.Command, args []string) error {
			pref := container.Prefs.Load()
			for i, provider := range pref.Order {
				key := "no key needed"
				if provider.RequiresCredential() {
					key = "API key"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %-24s (%s, %s)\n",
					i+1, provider.Label(), provider, key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hybrid assist: %v\n", pref.HybridAssist)
			return nil
		},
	}
}

func newProvidersOrderCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "order <provider> [provider...]",
		Short: "Save a new fallback order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var order []domain.Provider
			for _, name := range args {
				provider, ok := domain.ProviderByLabel(name)
				if !ok {
					provider = domain.Provider(strings.ToLower(name))
				}
				if !provider.Known() {
					return fmt.Errorf("unknown provider %q", name)
				}
				order = append(order, provider)
			}

			pref := container.Prefs.Load()
			pref.Order = order
			if err := container.Prefs.Save(pref); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Provider order saved.")
			return nil
		},
	}
}

func newProvidersHybridCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "hybrid <on|off>",
		Short: "Toggle hybrid assist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch strings.ToLower(args[0]) {
			case "on", "true", "1":
				enabled = true
			case "off", "false", "0":
				enabled = false
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}

			pref := container.Prefs.Load()
			pref.HybridAssist = enabled
			if err := container.Prefs.Save(pref); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hybrid assist %s.\n", args[0])
			return nil
		},
	}
}
