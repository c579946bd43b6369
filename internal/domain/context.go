package domain

import "time"

// ContextKind tags a ContextEntry variant.
type ContextKind string

const (
	ContextCommand ContextKind = "command"
	ContextQuery   ContextKind = "query"
)

// ContextEntry is either a {command, output, error} triple or a
// {query, answer} pair.
type ContextEntry struct {
	Kind      ContextKind
	Command   string
	Output    string
	Error     string
	Query     string
	Answer    string
	Timestamp time.Time
}

// CommandEntry builds the command variant.
func CommandEntry(command, output, errText string) ContextEntry {
	return ContextEntry{
		Kind:      ContextCommand,
		Command:   command,
		Output:    output,
		Error:     errText,
		Timestamp: time.Now(),
	}
}

// QueryEntry builds the AI turn variant.
func QueryEntry(query, answer string) ContextEntry {
	return ContextEntry{
		Kind:      ContextQuery,
		Query:     query,
		Answer:    answer,
		Timestamp: time.Now(),
	}
}

// SystemInfo is the host description sent alongside every AI request.
type SystemInfo struct {
	OS      OSInfo            `json:"os"`
	Env     map[string]string `json:"env"`
	Shell   ShellInfo         `json:"shell"`
	WorkDir string            `json:"cwd,omitempty"`
	Tools   []string          `json:"tools,omitempty"`
}

// OSInfo describes the operating system.
type OSInfo struct {
	System  string `json:"system"`
	Release string `json:"release,omitempty"`
	Machine string `json:"machine"`
}

// ShellInfo describes the user's interactive shell.
type ShellInfo struct {
	Type    string `json:"type"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	RCFile  string `json:"rc_file,omitempty"`
}
