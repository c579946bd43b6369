package domain

// Config mirrors ~/.aicmd/config.yaml.
type Config struct {
	ConfigFormatVersion string              `yaml:"config_format_version"`
	DefaultBackend      string              `yaml:"default_backend"`
	Backends            []BackendDefinition `yaml:"backends"`
	Assistant           AssistantSettings   `yaml:"assistant"`
	Search              SearchSettings      `yaml:"search"`
	Execution           ExecutionSettings   `yaml:"execution"`
	History             HistorySettings     `yaml:"history"`
}

// AssistantSettings controls how AI turns are framed and interpreted.
type AssistantSettings struct {
	AgentMode        bool   `yaml:"agent_mode"`
	ThinkOpen        string `yaml:"think_open"`
	ThinkClose       string `yaml:"think_close"`
	ContextWindow    int    `yaml:"context_window"`
	ContextRetention int    `yaml:"context_retention"`
	MaxOutputChars   int    `yaml:"max_output_chars"`
	SystemPrompt     string `yaml:"system_prompt,omitempty"`
}

// SearchSettings configures the web fallback search.
type SearchSettings struct {
	Enabled         bool               `yaml:"enabled"`
	Endpoint        string             `yaml:"endpoint"`
	MaxResults      int                `yaml:"max_results"`
	Workers         int                `yaml:"workers"`
	TimeoutSeconds  int                `yaml:"timeout_seconds"`
	BodyChars       int                `yaml:"body_chars"`
	Cache           bool               `yaml:"cache"`
	CacheTTLMinutes int                `yaml:"cache_ttl_minutes"`
	TrustedDomains  []CredibilityEntry `yaml:"trusted_domains,omitempty"`
}

// ExecutionSettings controls how commands run.
type ExecutionSettings struct {
	Shell           string `yaml:"shell"`
	ColorizeListing bool   `yaml:"colorize_listing"`
	DenylistFile    string `yaml:"denylist_file"`
}

// HistorySettings controls local input history persistence.
type HistorySettings struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	MaxEntries int    `yaml:"max_entries"`
}
