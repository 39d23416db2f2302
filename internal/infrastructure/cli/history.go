package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaelos/kael-go/internal/app"
	"github.com/kaelos/kael-go/internal/domain"
)

func newHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the local chat transcript",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistoryClearCommand(container),
	)
	return historyCmd
}

func newHistoryListCommand(container *app.Container) *cobra.Command {
	var (
		limit     int
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent transcript entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := container.Transcript.Messages(sessionID, limit)
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			if len(messages) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transcript recorded yet.")
				return nil
			}
			for _, msg := range messages {
				fmt.Fprintf(cmd.OutOrStdout(), "%s | %-5s | %s\n",
					msg.CreatedAt.Format(domain.TimestampFormat),
					msg.Author,
					msg.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")
	cmd.Flags().StringVar(&sessionID, "session", "", "Filter by session id")
	return cmd
}

func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Transcript.Clear(); err != nil {
				return fmt.Errorf("clear transcript: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Transcript cleared.")
			return nil
		},
	}
}
