// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the assistant core and the
// adapters in the infrastructure layer. The orchestrator depends only on these
// interfaces, so the platform-specific executor, the chat backends and the
// REPL front end can be selected at startup without the core knowing which
// implementation it talks to.
package ports

import (
	"context"

	"github.com/doeshing/aicmd-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.aicmd/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// CommandParser validates raw input and produces a normalized command line.
// Rejections are reported as *domain.RejectedError.
type CommandParser interface {
	Parse(raw string) (domain.NormalizedCommand, error)
}

// CommandTranslator maps command vocabulary between platforms.
type CommandTranslator interface {
	Translate(cmd domain.NormalizedCommand, target domain.Platform) domain.NormalizedCommand
	ToSource(cmd domain.NormalizedCommand) domain.NormalizedCommand
}

// CommandExecutor runs normalized commands on the host. Failures are folded
// into the result; Execute never returns an error.
type CommandExecutor interface {
	Platform() domain.Platform
	WorkDir() string
	Execute(ctx context.Context, cmd domain.NormalizedCommand) domain.ExecutionResult
}

// ChatClientFactory builds chat clients for configured backends.
type ChatClientFactory interface {
	ForBackend(domain.BackendDefinition) (ChatClient, error)
}

// ChatClient streams a completion for a role-tagged message list. onDelta is
// called with each raw content fragment in arrival order; single-object
// replies are delivered as one fragment.
type ChatClient interface {
	Name() string
	Backend() domain.BackendDefinition
	Stream(ctx context.Context, messages []domain.ChatMessage, onDelta func(string) error) error
}

// ContextStore keeps the bounded sequence of recent turns.
type ContextStore interface {
	Record(domain.ContextEntry)
	Recent(n int) []domain.ContextEntry
	Transcript(n int) string
	Len() int
}

// SystemInfoCollector describes the host for the AI request.
type SystemInfoCollector interface {
	Collect(context.Context) domain.SystemInfo
}

// SearchAggregator returns credibility-ranked web results. Failures yield an
// empty slice.
type SearchAggregator interface {
	Search(ctx context.Context, query string) []domain.SearchResult
}

// HistoryStore persists submitted lines across sessions.
type HistoryStore interface {
	Append(ctx context.Context, record domain.HistoryRecord) error
	Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
	Search(ctx context.Context, term string, limit int) ([]domain.HistoryRecord, error)
	Clear(ctx context.Context) error
}

// StreamWriter receives visible answer text while a response streams.
type StreamWriter interface {
	WriteChunk(text string)
	Done()
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stderr, files).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
