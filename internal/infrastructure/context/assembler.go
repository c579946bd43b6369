package contextcollector

import (
	"fmt"
	"strings"
	"sync"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/ports"
)

const truncatedSuffix = "\n...(truncated)"

// Assembler keeps the most recent turns of the session in a fixed-size ring
// and renders them as the transcript that primes the next AI request.
type Assembler struct {
	mu        sync.Mutex
	entries   []domain.ContextEntry
	start     int
	count     int
	maxOutput int
}

// NewAssembler keeps at most retention entries. Command output and errors are
// cut to maxOutput runes when rendered; zero disables the cap.
func NewAssembler(retention, maxOutput int) *Assembler {
	if retention <= 0 {
		retention = domain.DefaultContextRetention
	}
	return &Assembler{
		entries:   make([]domain.ContextEntry, retention),
		maxOutput: maxOutput,
	}
}

// NewAssemblerFromConfig sizes the ring from the assistant settings.
func NewAssemblerFromConfig(cfg domain.Config) *Assembler {
	return NewAssembler(cfg.GetContextRetention(), cfg.GetMaxOutputChars())
}

// Record appends an entry, evicting the oldest one when full.
func (a *Assembler) Record(entry domain.ContextEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()

	capacity := len(a.entries)
	if a.count < capacity {
		a.entries[(a.start+a.count)%capacity] = entry
		a.count++
		return
	}
	a.entries[a.start] = entry
	a.start = (a.start + 1) % capacity
}

// Recent returns up to n of the newest entries, oldest first.
func (a *Assembler) Recent(n int) []domain.ContextEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n <= 0 || n > a.count {
		n = a.count
	}
	out := make([]domain.ContextEntry, 0, n)
	capacity := len(a.entries)
	for i := a.count - n; i < a.count; i++ {
		out = append(out, a.entries[(a.start+i)%capacity])
	}
	return out
}

// Len reports how many entries are retained.
func (a *Assembler) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Transcript renders the newest n entries. Each entry ends with a "---"
// separator line.
func (a *Assembler) Transcript(n int) string {
	entries := a.Recent(n)
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	for _, entry := range entries {
		switch entry.Kind {
		case domain.ContextQuery:
			fmt.Fprintf(&b, "User: %s\n", entry.Query)
			fmt.Fprintf(&b, "AI: %s\n", entry.Answer)
		default:
			fmt.Fprintf(&b, "Command: %s\n", entry.Command)
			if out := a.clip(entry.Output); out != "" {
				fmt.Fprintf(&b, "Output:\n%s\n", out)
			}
			if errText := a.clip(entry.Error); errText != "" {
				fmt.Fprintf(&b, "Error:\n%s\n", errText)
			}
		}
		b.WriteString("---\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (a *Assembler) clip(text string) string {
	text = strings.TrimRight(text, "\n")
	if a.maxOutput <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= a.maxOutput {
		return text
	}
	return string(runes[:a.maxOutput]) + truncatedSuffix
}

var _ ports.ContextStore = (*Assembler)(nil)
