package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/doeshing/aicmd-go/internal/domain"
)

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AICMD_CONFIG", filepath.Join(home, "aicmd", "config.yaml"))

	root, cleanup := NewRootCmd(context.Background(), Options{})
	defer cleanup()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestTranslateCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"translate", "--to", "windows", "ls", "-l", "-a"}, "dir /a"},
		{[]string{"translate", "--to", "windows", "clear"}, "cls"},
		{[]string{"translate", "--reverse", "tasklist", "/v"}, "ps aux"},
		{[]string{"translate", "--to", "unix", "ls"}, "ls"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, _, err := runRoot(t, tt.args...)
			if err != nil {
				t.Fatalf("translate: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslateRejectsDenylisted(t *testing.T) {
	_, _, err := runRoot(t, "translate", "rm", "-rf", "/")
	if !domain.IsRejected(err) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestTranslateUnknownPlatform(t *testing.T) {
	if _, _, err := runRoot(t, "translate", "--to", "plan9", "ls"); err == nil {
		t.Fatal("expected error for unknown platform")
	}
}

func TestExecPropagatesExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	out, _, err := runRoot(t, "exec", "echo", "hello")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("out = %q", out)
	}

	_, _, err = runRoot(t, "exec", "exit", "3")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Fatalf("expected exit status 3, got %v", err)
	}
}

func TestOneLineRejected(t *testing.T) {
	_, errOut, err := runRoot(t, "rm -rf /")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("expected exit status 1, got %v", err)
	}
	if !strings.Contains(errOut, "rejected") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "aicmd version ") {
		t.Errorf("out = %q", out)
	}
}

func TestSearchClearCacheWithoutQuery(t *testing.T) {
	out, _, err := runRoot(t, "search", "--clear-cache")
	if err != nil {
		t.Fatalf("search --clear-cache: %v", err)
	}
	if !strings.HasPrefix(out, "Cleared ") || !strings.Contains(out, filepath.Join(".aicmd", "cache", "search")) {
		t.Errorf("out = %q", out)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	if _, _, err := runRoot(t, "search"); err == nil {
		t.Fatal("expected an argument error")
	}
}

func TestTurnExit(t *testing.T) {
	if err := turnExit(domain.TurnResult{Kind: domain.TurnCommand, Execution: &domain.ExecutionResult{Ran: true}}); err != nil {
		t.Errorf("success should map to nil, got %v", err)
	}
	if err := turnExit(domain.TurnResult{Kind: domain.TurnQuery, Err: domain.ErrEmptyResponse}); err == nil {
		t.Error("failed query should map to an exit error")
	}
}
