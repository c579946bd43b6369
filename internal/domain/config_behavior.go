package domain

import (
	"fmt"
	"time"
)

// GetDefaultBackend retrieves the default backend definition from configuration
// Returns an error if the default backend is not found
func (c *Config) GetDefaultBackend() (BackendDefinition, error) {
	if c.DefaultBackend == "" {
		if len(c.Backends) > 0 {
			return c.Backends[0], nil
		}
		return BackendDefinition{}, fmt.Errorf("no default backend configured")
	}

	for _, backend := range c.Backends {
		if backend.Name == c.DefaultBackend {
			return backend, nil
		}
	}

	return BackendDefinition{}, fmt.Errorf("default backend %s not found in configuration", c.DefaultBackend)
}

// FindBackendByName searches for a backend by its name
func (c *Config) FindBackendByName(name string) (BackendDefinition, bool) {
	for _, backend := range c.Backends {
		if backend.Name == name {
			return backend, true
		}
	}
	return BackendDefinition{}, false
}

// HasBackend checks if a backend with the given name exists in the configuration
func (c *Config) HasBackend(name string) bool {
	_, exists := c.FindBackendByName(name)
	return exists
}

// PickBackend resolves an override name, falling back to the default backend.
func (c *Config) PickBackend(override string) (BackendDefinition, error) {
	if override == "" {
		return c.GetDefaultBackend()
	}
	backend, ok := c.FindBackendByName(override)
	if !ok {
		return BackendDefinition{}, fmt.Errorf("backend %s not configured", override)
	}
	return backend, nil
}

// GetThinkMarkers returns the reasoning segment delimiters
func (c *Config) GetThinkMarkers() (string, string) {
	openMarker, closeMarker := c.Assistant.ThinkOpen, c.Assistant.ThinkClose
	if openMarker == "" {
		openMarker = DefaultThinkOpen
	}
	if closeMarker == "" {
		closeMarker = DefaultThinkClose
	}
	return openMarker, closeMarker
}

// GetContextWindow returns how many context entries are sent with a query
func (c *Config) GetContextWindow() int {
	if c.Assistant.ContextWindow <= 0 {
		return DefaultContextWindow
	}
	return c.Assistant.ContextWindow
}

// GetContextRetention returns how many context entries are kept in memory
func (c *Config) GetContextRetention() int {
	if c.Assistant.ContextRetention <= 0 {
		return DefaultContextRetention
	}
	if c.Assistant.ContextRetention < c.GetContextWindow() {
		return c.GetContextWindow()
	}
	return c.Assistant.ContextRetention
}

// GetMaxOutputChars returns the per-entry output cap used in transcripts
func (c *Config) GetMaxOutputChars() int {
	if c.Assistant.MaxOutputChars <= 0 {
		return DefaultMaxOutputChars
	}
	return c.Assistant.MaxOutputChars
}

// GetSearchEndpoint returns the configured search endpoint
func (c *Config) GetSearchEndpoint() string {
	if c.Search.Endpoint == "" {
		return DefaultSearchEndpoint
	}
	return c.Search.Endpoint
}

// GetSearchMaxResults returns how many candidates are considered per search
func (c *Config) GetSearchMaxResults() int {
	if c.Search.MaxResults <= 0 {
		return DefaultSearchMaxResults
	}
	return c.Search.MaxResults
}

// GetSearchWorkers returns the fetch pool size
func (c *Config) GetSearchWorkers() int {
	if c.Search.Workers <= 0 {
		return DefaultSearchWorkers
	}
	return c.Search.Workers
}

// GetSearchTimeout returns the per-request search timeout
func (c *Config) GetSearchTimeout() time.Duration {
	if c.Search.TimeoutSeconds <= 0 {
		return DefaultSearchTimeout
	}
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// GetSearchBodyChars returns the page body character budget
func (c *Config) GetSearchBodyChars() int {
	if c.Search.BodyChars <= 0 {
		return DefaultSearchBodyChars
	}
	return c.Search.BodyChars
}

// GetSearchCacheTTL returns how long cached search results stay fresh
func (c *Config) GetSearchCacheTTL() time.Duration {
	if c.Search.CacheTTLMinutes <= 0 {
		return DefaultSearchCacheTTL
	}
	return time.Duration(c.Search.CacheTTLMinutes) * time.Minute
}

// GetCredibilityTable returns the configured trusted domains ahead of the
// built-in table, so a configured entry wins a tie on match length
func (c *Config) GetCredibilityTable() []CredibilityEntry {
	table := make([]CredibilityEntry, 0, len(c.Search.TrustedDomains)+len(DefaultCredibilityTable()))
	table = append(table, c.Search.TrustedDomains...)
	return append(table, DefaultCredibilityTable()...)
}

// GetExecutionShell returns the configured shell for command execution
// Returns an empty string when the shell should be auto-detected
func (c *Config) GetExecutionShell() string {
	if c.Execution.Shell == "auto" {
		return ""
	}
	return c.Execution.Shell
}

// GetHistoryMaxEntries returns the on-disk history retention
func (c *Config) GetHistoryMaxEntries() int {
	if c.History.MaxEntries <= 0 {
		return DefaultHistoryMaxEntries
	}
	return c.History.MaxEntries
}

// ValidateConsistency checks the internal consistency of the configuration
func (c *Config) ValidateConsistency() error {
	if c.DefaultBackend != "" && !c.HasBackend(c.DefaultBackend) {
		return fmt.Errorf("default backend %s does not exist in backends list", c.DefaultBackend)
	}

	seen := map[string]bool{}
	for _, backend := range c.Backends {
		if backend.Name == "" {
			return fmt.Errorf("backend with endpoint %q has no name", backend.Endpoint)
		}
		if seen[backend.Name] {
			return fmt.Errorf("backend %s declared twice", backend.Name)
		}
		seen[backend.Name] = true

		switch backend.GetKind() {
		case BackendOpenAI:
			if backend.Endpoint == "" {
				return fmt.Errorf("backend %s: endpoint is required", backend.Name)
			}
		case BackendGemini:
		default:
			return fmt.Errorf("backend %s: unsupported kind %q", backend.Name, backend.Kind)
		}
	}

	openMarker, closeMarker := c.GetThinkMarkers()
	if openMarker == closeMarker {
		return fmt.Errorf("think markers must differ, both are %q", openMarker)
	}

	for _, entry := range c.Search.TrustedDomains {
		if entry.Score < 0 || entry.Score > 1 {
			return fmt.Errorf("trusted domain %s: score %.2f outside [0,1]", entry.Domain, entry.Score)
		}
	}

	return nil
}
