package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kaelos/kael-go/internal/app"
	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/version"
)

func newDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			report := container.DoctorService.Run(cmd.Context())
			displayDoctorReport(cmd.OutOrStdout(), report)
			if !report.Healthy() {
				return fmt.Errorf("diagnostics found problems")
			}
			return nil
		},
	}
}

func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
	}
}

func newWarmupCommand(container *app.Container) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "warmup",
		Short: "Preload the local inference model",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !container.CompletionService.Warmup(cmd.Context(), model) {
				return fmt.Errorf("local inference server not reachable")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Local model warmed up.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model to preload (default from catalog)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "kael version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.BuildDate != "" {
				fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
			}
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			return nil
		},
	}
}
