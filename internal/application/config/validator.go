package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/doeshing/aicmd-go/internal/domain"
)

// maxSearchWorkers caps the page fetch pool.
const maxSearchWorkers = 16

// Validate ensures config structure is consistent. It runs the domain
// consistency checks first and then the section-level range checks.
func Validate(cfg domain.Config) error {
	if len(cfg.Backends) == 0 {
		return errors.New("at least one backend must be configured")
	}
	if err := cfg.ValidateConsistency(); err != nil {
		return err
	}
	if err := validateBackends(cfg.Backends); err != nil {
		return err
	}
	if err := validateAssistant(cfg.Assistant); err != nil {
		return err
	}
	if err := validateSearch(cfg.Search); err != nil {
		return err
	}
	return validateHistory(cfg.History)
}

func validateBackends(backends []domain.BackendDefinition) error {
	for _, backend := range backends {
		if backend.Endpoint != "" {
			u, err := url.Parse(backend.Endpoint)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("backend %s: endpoint %q is not an http(s) URL", backend.Name, backend.Endpoint)
			}
		}
		if backend.ModelID == "" {
			return fmt.Errorf("backend %s: model_id is required", backend.Name)
		}
		if backend.Temperature < 0 || backend.Temperature > 2 {
			return fmt.Errorf("backend %s: temperature must be within [0,2]", backend.Name)
		}
	}
	return nil
}

func validateAssistant(a domain.AssistantSettings) error {
	if a.ContextWindow < 0 || a.ContextRetention < 0 || a.MaxOutputChars < 0 {
		return errors.New("assistant: context_window, context_retention and max_output_chars must be >= 0")
	}
	if a.ContextRetention > 0 && a.ContextWindow > a.ContextRetention {
		return fmt.Errorf("assistant.context_window (%d) exceeds context_retention (%d)", a.ContextWindow, a.ContextRetention)
	}
	return nil
}

func validateSearch(s domain.SearchSettings) error {
	if s.Workers > maxSearchWorkers {
		return fmt.Errorf("search.workers must be <= %d", maxSearchWorkers)
	}
	if s.Endpoint != "" {
		if u, err := url.Parse(s.Endpoint); err != nil || u.Host == "" {
			return fmt.Errorf("search.endpoint %q is not a URL", s.Endpoint)
		}
	}
	if s.MaxResults < 0 || s.TimeoutSeconds < 0 || s.BodyChars < 0 || s.CacheTTLMinutes < 0 {
		return errors.New("search: max_results, timeout_seconds, body_chars and cache_ttl_minutes must be >= 0")
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	if history.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must be >= 0")
	}
	return nil
}
