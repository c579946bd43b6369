package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	appconfig "github.com/doeshing/aicmd-go/internal/application/config"
	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/ports"
)

// probeTimeout bounds the optional round trip to the backend.
const probeTimeout = 30 * time.Second

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Parser         ports.CommandParser
	SystemInfo     ports.SystemInfoCollector
	History        ports.HistoryStore
	Clients        ports.ChatClientFactory
}

// Options selects optional checks.
type Options struct {
	// Probe sends a one-word request to the backend and reports latency.
	Probe   bool
	Backend string
}

// Run executes checks and returns a report. Only a config that cannot be
// loaded is returned as an error.
func (s *Service) Run(ctx context.Context, opts Options) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format %s, %d backends", cfg.ConfigFormatVersion, len(cfg.Backends))))
	}

	if s.Parser != nil {
		if _, err := s.Parser.Parse("rm -rf /"); domain.IsRejected(err) {
			checks = append(checks, ok("Denylist", "destructive commands are rejected"))
		} else {
			checks = append(checks, fail("Denylist", "root deletion was not rejected"))
		}
	} else {
		checks = append(checks, warn("Denylist", "parser not initialized"))
	}

	if s.SystemInfo != nil {
		info := s.SystemInfo.Collect(ctx)
		checks = append(checks, ok("Host", fmt.Sprintf("%s/%s, shell %s, %d tools detected", info.OS.System, info.OS.Machine, info.Shell.Type, len(info.Tools))))
	}

	if s.History != nil {
		if _, err := s.History.Recent(ctx, 1); err != nil {
			checks = append(checks, warn("History", err.Error()))
		} else {
			checks = append(checks, ok("History", "store readable"))
		}
	} else {
		checks = append(checks, warn("History", "disabled"))
	}

	checks = append(checks, apiKeyCheck(cfg.Backends))

	if opts.Probe {
		checks = append(checks, s.probe(ctx, cfg, opts.Backend))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) probe(ctx context.Context, cfg domain.Config, name string) domain.HealthCheck {
	backend, err := cfg.PickBackend(name)
	if err != nil {
		return fail("Backend probe", err.Error())
	}
	if s.Clients == nil {
		return warn("Backend probe", "no client factory")
	}
	client, err := s.Clients.ForBackend(backend)
	if err != nil {
		return fail("Backend probe", err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	err = client.Stream(ctx, []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}, func(string) error { return nil })
	if err != nil {
		var streamErr *domain.StreamError
		if errors.As(err, &streamErr) {
			return fail("Backend probe", fmt.Sprintf("%s: %s", backend.Name, streamErr.UserMessage()))
		}
		return fail("Backend probe", fmt.Sprintf("%s: %v", backend.Name, err))
	}
	return ok("Backend probe", fmt.Sprintf("%s answered in %.2fs", backend.Name, time.Since(start).Seconds()))
}

func apiKeyCheck(backends []domain.BackendDefinition) domain.HealthCheck {
	var missing []string
	for _, backend := range backends {
		if backend.AuthEnvVar != "" && os.Getenv(backend.AuthEnvVar) == "" {
			missing = append(missing, backend.AuthEnvVar)
		}
	}
	if len(missing) > 0 {
		return warn("API keys", fmt.Sprintf("not set: %v", missing))
	}
	return ok("API keys", "set for every backend that declares one")
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
