package domain

import "strings"

// ThinkMode is the state of the response stream interpreter.
type ThinkMode int

const (
	ModeVisible ThinkMode = iota
	ModeSuppressed
)

func (m ThinkMode) String() string {
	if m == ModeSuppressed {
		return "SUPPRESSED"
	}
	return "VISIBLE"
}

// ThinkState accumulates one streamed response. Exactly one mode is active.
type ThinkState struct {
	Mode       ThinkMode
	Visible    strings.Builder
	Suppressed strings.Builder
}

// Answer is the final interpreted AI reply.
type Answer struct {
	Text      string
	Reasoning string
	// Command is the first command found in a fenced block, if any.
	Command string
	// RequiresPrivilege marks commands that must be run manually.
	RequiresPrivilege bool
}
