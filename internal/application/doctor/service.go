// Package doctor runs environment diagnostics for the assistant engine.
package doctor

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	Config   domain.Config
	Prober   ports.LocalProber
	Prefs    ports.PreferenceStore
	Sessions ports.SessionSource
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) domain.HealthReport {
	var checks []domain.HealthCheck

	if s.Prober != nil && s.Prober.Ping(ctx) {
		checks = append(checks, ok("Local inference", "Ollama server reachable"))
	} else {
		checks = append(checks, warn("Local inference", "Ollama server not reachable; local fallback disabled"))
	}

	if _, err := exec.LookPath("gh"); err == nil {
		checks = append(checks, ok("GitHub CLI", "gh binary found"))
	} else {
		checks = append(checks, warn("GitHub CLI", "gh not found; the Copilot CLI provider will be skipped"))
	}

	if s.Config.Remote.FirebaseProject != "" {
		checks = append(checks, ok("Remote key store", fmt.Sprintf("project %s configured", s.Config.Remote.FirebaseProject)))
	} else {
		checks = append(checks, warn("Remote key store", "no Firestore project configured; stored API keys unavailable"))
	}

	if s.Sessions != nil {
		if session, err := s.Sessions.Current(); err != nil {
			checks = append(checks, fail("Session", err.Error()))
		} else if session != nil {
			checks = append(checks, ok("Session", fmt.Sprintf("signed in as %s", session.Email)))
		} else {
			checks = append(checks, warn("Session", "not signed in; only credential-free providers will work"))
		}
	}

	if s.Prefs != nil {
		pref := s.Prefs.Load()
		checks = append(checks, ok("Provider order", fmt.Sprintf("%d providers in chain", len(pref.Order))))
	}

	return domain.HealthReport{Checks: checks}
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
