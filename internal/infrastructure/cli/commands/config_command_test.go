package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	configinfra "github.com/doeshing/aicmd-go/internal/infrastructure/config"
)

func runConfig(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	loader := configinfra.NewFileLoader(path)
	cmd := NewConfigCommand(func() *configinfra.FileLoader { return loader })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigPathAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := runConfig(t, path, "path")
	if err != nil || strings.TrimSpace(out) != path {
		t.Fatalf("path: %q, %v", out, err)
	}

	out, err = runConfig(t, path, "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, MsgConfigurationValid) {
		t.Errorf("validate output %q", out)
	}
}

func TestConfigDiffDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	out, err := runConfig(t, path, "diff")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.Contains(out, MsgNoDifferencesFromDefault) {
		t.Errorf("expected no differences, got %q", out)
	}
}

func TestConfigSetGetAndDiff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if _, err := runConfig(t, path, "set", "search.workers", "5"); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, err := runConfig(t, path, "get", "search.workers")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out) != "5" {
		t.Errorf("get = %q, want 5", out)
	}

	out, err = runConfig(t, path, "diff")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.Contains(out, "Workers") {
		t.Errorf("diff should mention Workers:\n%s", out)
	}

	backups, _ := filepath.Glob(filepath.Join(dir, "config.yaml.*.bak"))
	if len(backups) != 1 {
		t.Errorf("expected one backup, got %v", backups)
	}
}

func TestConfigSetRejectsInvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := runConfig(t, path, "set", "search.workers", "99"); err == nil {
		t.Fatal("expected validation error")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "workers: 99") {
		t.Fatal("invalid value must not be saved")
	}
}

func TestConfigGetUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := runConfig(t, path, "get", "nope.missing"); err == nil {
		t.Fatal("expected missing key error")
	}
}
