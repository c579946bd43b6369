package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/aicmd-go/internal/app"
	"github.com/doeshing/aicmd-go/internal/domain"
)

type memoryHistory struct {
	records []domain.HistoryRecord
	cleared bool
	term    string
}

func (m *memoryHistory) Append(_ context.Context, rec domain.HistoryRecord) error {
	m.records = append([]domain.HistoryRecord{rec}, m.records...)
	return nil
}

func (m *memoryHistory) Recent(_ context.Context, limit int) ([]domain.HistoryRecord, error) {
	if limit > 0 && limit < len(m.records) {
		return m.records[:limit], nil
	}
	return m.records, nil
}

func (m *memoryHistory) Search(_ context.Context, term string, limit int) ([]domain.HistoryRecord, error) {
	m.term = term
	var out []domain.HistoryRecord
	for _, rec := range m.records {
		if strings.Contains(rec.Input, term) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryHistory) Clear(context.Context) error {
	m.cleared = true
	m.records = nil
	return nil
}

func runHistory(t *testing.T, store *memoryHistory, args ...string) (string, error) {
	t.Helper()
	container := &app.Container{}
	if store != nil {
		container.HistoryStore = store
	}
	cmd := NewHistoryCommand(func() (*app.Container, error) { return container, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func sampleHistory() *memoryHistory {
	now := time.Now()
	return &memoryHistory{records: []domain.HistoryRecord{
		{Timestamp: now, Kind: domain.TurnCommand, Input: "ls -la", Success: true},
		{Timestamp: now.Add(-time.Minute), Kind: domain.TurnSuggested, Input: "ls -la", Backend: "ollama"},
		{Timestamp: now.Add(-2 * time.Minute), Kind: domain.TurnQuery, Input: "/list files", Backend: "ollama", Success: true},
		{Timestamp: now.Add(-3 * time.Minute), Kind: domain.TurnCommand, Input: "git pushh", Success: false, ExitCode: 1},
		{Timestamp: now.Add(-4 * time.Minute), Kind: domain.TurnRejected, Input: "rm -rf /"},
		{Timestamp: now.Add(-5 * time.Minute), Kind: domain.TurnCommand, Input: "ls -la", Success: true},
	}}
}

func TestHistoryList(t *testing.T) {
	out, err := runHistory(t, sampleHistory(), "list", "--limit", "2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	if !strings.Contains(lines[0], "now") || !strings.Contains(lines[0], "command") || !strings.HasSuffix(lines[0], "ls -la") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "suggested") || !strings.Contains(lines[1], "| ok ") {
		t.Errorf("suggested entries are not failures: %q", lines[1])
	}
}

func TestHistorySearchJoinsArgs(t *testing.T) {
	store := sampleHistory()
	out, err := runHistory(t, store, "search", "list", "files")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if store.term != "list files" {
		t.Errorf("term = %q", store.term)
	}
	if !strings.Contains(out, "/list files") {
		t.Errorf("missing match in %q", out)
	}
}

func TestHistoryClear(t *testing.T) {
	store := sampleHistory()
	out, err := runHistory(t, store, "clear")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !store.cleared || !strings.Contains(out, MsgHistoryCleared) {
		t.Errorf("cleared=%v out=%q", store.cleared, out)
	}

	out, err = runHistory(t, store, "list")
	if err != nil || !strings.Contains(out, MsgNoHistoryRecorded) {
		t.Errorf("list after clear: %q, %v", out, err)
	}
}

func TestHistoryStats(t *testing.T) {
	out, err := runHistory(t, sampleHistory(), "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{
		"Entries analyzed: 6",
		"Commands: 3 (success rate 66.7%)",
		"Queries: 1, suggested commands: 1, rejected: 1",
		"  ls -la (2)",
		"  ollama: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryDisabled(t *testing.T) {
	if _, err := runHistory(t, nil, "list"); err == nil || !strings.Contains(err.Error(), "unavailable") {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
