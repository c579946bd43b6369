package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout bounds a whole AI request, streaming included
	DefaultHTTPClientTimeout = 5 * time.Minute
	// DefaultSearchTimeout is the per-request timeout of the search aggregator
	DefaultSearchTimeout = 10 * time.Second
	// TickerInterval is how often the elapsed-time indicator refreshes
	TickerInterval = 100 * time.Millisecond
)

// Assistant defaults
const (
	DefaultThinkOpen        = "<think>"
	DefaultThinkClose       = "</think>"
	DefaultContextWindow    = 10
	DefaultContextRetention = 1000
	DefaultMaxOutputChars   = 2000
	AgentModePrefix         = "[AGENT_MODE] "
)

// Search defaults
const (
	DefaultSearchEndpoint   = "https://html.duckduckgo.com/html/"
	DefaultSearchMaxResults = 5
	DefaultSearchWorkers    = 3
	DefaultSearchBodyChars  = 1000
	NeutralCredibility      = 0.5
	DefaultSearchCacheTTL   = time.Hour
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// DefaultHistorySearchLimit is the default number of search results to return
	DefaultHistorySearchLimit = 50
	// DefaultHistoryMaxEntries is how many inputs are retained on disk
	DefaultHistoryMaxEntries = 1000
	// DefaultHistoryPreload is how many inputs the line editor recalls on start
	DefaultHistoryPreload = 200
)

// Model configuration constants
const (
	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.7
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
