package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/chzyer/readline"
	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/ports"
)

type scriptedReader struct {
	lines   []string
	errs    []error
	saved   []string
	stdin   []string
	prompts int
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line, err := s.lines[0], s.errs[0]
	s.lines, s.errs = s.lines[1:], s.errs[1:]
	return line, err
}

func (s *scriptedReader) SetPrompt(string) { s.prompts++ }

func (s *scriptedReader) SaveHistory(line string) error {
	s.saved = append(s.saved, line)
	return nil
}

func (s *scriptedReader) WriteStdin(b []byte) (int, error) {
	s.stdin = append(s.stdin, string(b))
	return len(b), nil
}

func (s *scriptedReader) Close() error { return nil }

func (s *scriptedReader) push(line string, err error) *scriptedReader {
	s.lines = append(s.lines, line)
	s.errs = append(s.errs, err)
	return s
}

type stubHandler struct {
	results map[string]domain.TurnResult
	lines   []string
	writers []bool
}

func (h *stubHandler) HandleLine(_ context.Context, line string, out ports.StreamWriter) domain.TurnResult {
	h.lines = append(h.lines, line)
	h.writers = append(h.writers, out != nil)
	if out != nil {
		out.Done()
	}
	return h.results[line]
}

type stubHistory struct {
	records []domain.HistoryRecord
}

func (s *stubHistory) Append(context.Context, domain.HistoryRecord) error { return nil }
func (s *stubHistory) Recent(_ context.Context, limit int) ([]domain.HistoryRecord, error) {
	return s.records, nil
}
func (s *stubHistory) Search(context.Context, string, int) ([]domain.HistoryRecord, error) {
	return nil, nil
}
func (s *stubHistory) Clear(context.Context) error { return nil }

func newTestREPL(handler TurnHandler) (*REPL, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &REPL{
		Handler:  handler,
		WorkDir:  func() string { return "/tmp/work" },
		Renderer: NewRenderer(&out, &errOut),
		Stdout:   &out,
		Stderr:   &errOut,
	}, &out, &errOut
}

func TestREPLPrefillsSuggestedCommand(t *testing.T) {
	handler := &stubHandler{results: map[string]domain.TurnResult{
		"/list files": {Kind: domain.TurnQuery, Answer: &domain.Answer{Command: "ls -la"}},
		"ls -la":      {Kind: domain.TurnCommand, Execution: &domain.ExecutionResult{Ran: true, Stdout: "a.txt\n"}},
	}}
	repl, out, _ := newTestREPL(handler)
	reader := (&scriptedReader{}).push("/list files", nil).push("ls -la", nil).push("exit", nil).push("never", nil)

	if err := repl.loop(context.Background(), reader); err != nil {
		t.Fatalf("loop: %v", err)
	}

	if diff := cmp.Diff([]string{"/list files", "ls -la"}, handler.lines); diff != "" {
		t.Errorf("handled lines mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true, false}, handler.writers); diff != "" {
		t.Errorf("stream writer only for queries (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ls -la"}, reader.stdin); diff != "" {
		t.Errorf("prefill mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ls -la"}, reader.saved); diff != "" {
		t.Errorf("saved history mismatch (-want +got):\n%s", diff)
	}
	if !bytes.Contains(out.Bytes(), []byte("a.txt")) {
		t.Errorf("command output not rendered: %q", out.String())
	}
}

func TestREPLPrivilegedCommandIsNotPrefilled(t *testing.T) {
	handler := &stubHandler{results: map[string]domain.TurnResult{
		"/install git": {Kind: domain.TurnQuery, Answer: &domain.Answer{Command: "choco install git", RequiresPrivilege: true}},
	}}
	repl, _, _ := newTestREPL(handler)
	reader := (&scriptedReader{}).push("/install git", nil)

	if err := repl.loop(context.Background(), reader); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if len(reader.stdin) != 0 {
		t.Errorf("privileged command must not be prefilled, got %v", reader.stdin)
	}
	if diff := cmp.Diff([]string{"choco install git"}, reader.saved); diff != "" {
		t.Errorf("saved history mismatch (-want +got):\n%s", diff)
	}
}

func TestREPLDoubleInterruptExits(t *testing.T) {
	handler := &stubHandler{}
	repl, _, errOut := newTestREPL(handler)
	reader := (&scriptedReader{}).
		push("", readline.ErrInterrupt).
		push("", readline.ErrInterrupt).
		push("pwd", nil)

	if err := repl.loop(context.Background(), reader); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if len(handler.lines) != 0 {
		t.Errorf("no line should be handled, got %v", handler.lines)
	}
	if !bytes.Contains(errOut.Bytes(), []byte(interruptAgainNotice)) {
		t.Errorf("missing interrupt notice in %q", errOut.String())
	}
}

func TestREPLInterruptResetsAfterLine(t *testing.T) {
	handler := &stubHandler{results: map[string]domain.TurnResult{}}
	repl, _, _ := newTestREPL(handler)
	reader := (&scriptedReader{}).
		push("", readline.ErrInterrupt).
		push("pwd", nil).
		push("", readline.ErrInterrupt).
		push("whoami", nil)

	if err := repl.loop(context.Background(), reader); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if diff := cmp.Diff([]string{"pwd", "whoami"}, handler.lines); diff != "" {
		t.Errorf("handled lines mismatch (-want +got):\n%s", diff)
	}
}

func TestREPLStopsWhenContextDone(t *testing.T) {
	repl, _, _ := newTestREPL(&stubHandler{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := repl.loop(ctx, (&scriptedReader{}).push("pwd", nil)); err != context.Canceled {
		t.Fatalf("loop error = %v, want context.Canceled", err)
	}
}

func TestREPLPreloadOldestFirst(t *testing.T) {
	repl, _, _ := newTestREPL(&stubHandler{})
	repl.History = &stubHistory{records: []domain.HistoryRecord{
		{Input: "third"}, {Input: "  "}, {Input: "second"}, {Input: "first"},
	}}
	reader := &scriptedReader{}
	repl.preload(context.Background(), reader)

	if diff := cmp.Diff([]string{"first", "second", "third"}, reader.saved); diff != "" {
		t.Errorf("preload order mismatch (-want +got):\n%s", diff)
	}
}

func completions(c *completer, line string) []string {
	got, _ := c.Do([]rune(line), len([]rune(line)))
	out := make([]string, 0, len(got))
	for _, r := range got {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

func TestCompleterCommandNames(t *testing.T) {
	c := &completer{vocabulary: []string{"ls", "less", "dir", "cls"}}

	if diff := cmp.Diff([]string{"ess", "s"}, completions(c, "l")); diff != "" {
		t.Errorf("first word completion mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"uit"}, completions(c, "q")); diff != "" {
		t.Errorf("builtin completion mismatch (-want +got):\n%s", diff)
	}
	if _, length := c.Do([]rune("le"), 2); length != 2 {
		t.Errorf("length = %d, want 2", length)
	}
}

func TestCompleterPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"notes.txt", "novel.md", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	c := &completer{workDir: func() string { return dir }}

	if diff := cmp.Diff([]string{"sted" + string(filepath.Separator)}, completions(c, "cat ne")); diff != "" {
		t.Errorf("nested completion mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"tes.txt", "vel.md"}, completions(c, "cat no")); diff != "" {
		t.Errorf("file completion mismatch (-want +got):\n%s", diff)
	}
	if got := completions(c, "cat "); len(got) != 3 {
		t.Errorf("hidden files should be skipped, got %v", got)
	}
	if diff := cmp.Diff([]string{"hidden"}, completions(c, "cat .")); diff != "" {
		t.Errorf("dot prefix completion mismatch (-want +got):\n%s", diff)
	}
}
