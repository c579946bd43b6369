package domain

import "time"

// HistoryRecord captures one submitted line and how it was handled.
type HistoryRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	Kind       TurnKind  `json:"kind"`
	Input      string    `json:"input"`
	Backend    string    `json:"backend,omitempty"`
	Success    bool      `json:"success"`
	ExitCode   int       `json:"exit_code"`
	DurationMS int64     `json:"duration_ms"`
}
