package contextcollector

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/pkg/filesystem"
	"github.com/doeshing/aicmd-go/internal/ports"
)

// probeTimeout bounds each helper process started while describing the host.
const probeTimeout = 2 * time.Second

var reportedEnv = []string{"PATH", "CONDA_PREFIX", "SHELL"}

// HostCollector describes the machine the assistant runs on.
type HostCollector struct {
	toolsToCheck []string
	workDir      func() string
	run          func(ctx context.Context, name string, args ...string) string
}

// NewHostCollector reports the executor's working directory through workDir,
// which may be nil.
func NewHostCollector(workDir func() string) *HostCollector {
	return &HostCollector{
		toolsToCheck: []string{"git", "docker", "kubectl", "python3", "python", "pip", "conda", "node", "npm", "go", "brew", "apt", "choco", "winget"},
		workDir:      workDir,
		run:          runCmd,
	}
}

// Collect gathers OS, environment and shell details. Probes that fail leave
// their fields empty.
func (c *HostCollector) Collect(ctx context.Context) domain.SystemInfo {
	env := make(map[string]string, len(reportedEnv))
	for _, key := range reportedEnv {
		env[key] = os.Getenv(key)
	}

	info := domain.SystemInfo{
		OS: domain.OSInfo{
			System:  runtime.GOOS,
			Release: c.osRelease(ctx),
			Machine: runtime.GOARCH,
		},
		Env:   env,
		Shell: c.detectShell(ctx),
		Tools: c.detectTools(),
	}
	if c.workDir != nil {
		info.WorkDir = c.workDir()
	}
	return info
}

func (c *HostCollector) detectTools() []string {
	var available []string
	for _, tool := range c.toolsToCheck {
		if _, err := exec.LookPath(tool); err == nil {
			available = append(available, tool)
		}
	}
	return available
}

func (c *HostCollector) osRelease(ctx context.Context) string {
	if runtime.GOOS == "windows" {
		return strings.TrimSpace(c.run(ctx, "cmd", "/c", "ver"))
	}
	return strings.TrimSpace(c.run(ctx, "uname", "-r"))
}

func (c *HostCollector) detectShell(ctx context.Context) domain.ShellInfo {
	if runtime.GOOS == "windows" {
		return detectWindowsShell()
	}

	path := os.Getenv("SHELL")
	if path == "" {
		return domain.ShellInfo{Type: "unknown"}
	}
	shellType := filepath.Base(path)
	info := domain.ShellInfo{
		Type:   shellType,
		Path:   path,
		RCFile: rcFile(shellType),
	}
	switch shellType {
	case "bash", "zsh", "fish":
		version := strings.TrimSpace(c.run(ctx, path, "--version"))
		info.Version, _, _ = strings.Cut(version, "\n")
	}
	return info
}

func detectWindowsShell() domain.ShellInfo {
	switch {
	case os.Getenv("PSModulePath") != "" && os.Getenv("PROMPT") == "":
		return domain.ShellInfo{Type: "powershell"}
	case os.Getenv("PROMPT") != "":
		return domain.ShellInfo{Type: "cmd", Path: os.Getenv("COMSPEC")}
	default:
		return domain.ShellInfo{Type: "unknown_windows_shell"}
	}
}

func rcFile(shellType string) string {
	var rel string
	switch shellType {
	case "bash":
		rel = ".bashrc"
	case "zsh":
		rel = ".zshrc"
	case "fish":
		rel = filepath.Join(".config", "fish", "config.fish")
	default:
		return ""
	}
	return filepath.Join(filesystem.UserHomeDir(), rel)
}

func runCmd(ctx context.Context, name string, args ...string) string {
	cctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	out, err := exec.CommandContext(cctx, name, args...).Output()
	if err != nil {
		return ""
	}
	return string(out)
}

var _ ports.SystemInfoCollector = (*HostCollector)(nil)
