package executor

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/doeshing/aicmd-go/internal/domain"
)

// processLauncher builds the process for one command line on a given host.
// The executor picks one implementation at construction time.
type processLauncher interface {
	platform() domain.Platform
	command(ctx context.Context, cmd domain.NormalizedCommand) *exec.Cmd
}

func launcherFor(platform domain.Platform, shell string) processLauncher {
	if platform == domain.PlatformWindows {
		return windowsLauncher{}
	}
	return newUnixLauncher(shell)
}

// HostPlatform maps runtime.GOOS onto a command vocabulary.
func HostPlatform() domain.Platform {
	if runtime.GOOS == "windows" {
		return domain.PlatformWindows
	}
	return domain.PlatformUnix
}

type unixLauncher struct {
	shell string
}

// defaultUnixShell runs lines when no shell is configured. Parsed lines use
// POSIX syntax, so the login shell is only used when named explicitly.
const defaultUnixShell = "/bin/sh"

func newUnixLauncher(shell string) unixLauncher {
	if shell == "" || shell == "auto" {
		shell = defaultUnixShell
	}
	return unixLauncher{shell: shell}
}

func (u unixLauncher) platform() domain.Platform {
	return domain.PlatformUnix
}

func (u unixLauncher) command(ctx context.Context, cmd domain.NormalizedCommand) *exec.Cmd {
	c := exec.CommandContext(ctx, u.shell, "-c", cmd.Text)
	c.Env = append(os.Environ(), "LANG=en_US.UTF-8")
	return c
}

// windowsInternal lists cmd.exe builtins that have no executable of their own.
var windowsInternal = map[string]bool{
	"dir":   true,
	"cd":    true,
	"type":  true,
	"copy":  true,
	"move":  true,
	"del":   true,
	"rd":    true,
	"rmdir": true,
	"md":    true,
	"mkdir": true,
	"cls":   true,
	"echo":  true,
}

type windowsLauncher struct{}

func (windowsLauncher) platform() domain.Platform {
	return domain.PlatformWindows
}

func (windowsLauncher) command(ctx context.Context, cmd domain.NormalizedCommand) *exec.Cmd {
	fields := cmd.Fields()
	if needsInterpreter(fields) {
		return exec.CommandContext(ctx, "cmd", "/c", cmd.Text)
	}
	args := make([]string, 0, len(fields))
	for _, f := range fields {
		args = append(args, domain.Unquote(f))
	}
	return exec.CommandContext(ctx, args[0], args[1:]...)
}

func needsInterpreter(fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	if windowsInternal[strings.ToLower(fields[0])] {
		return true
	}
	for _, f := range fields {
		if domain.IsOperatorToken(f) || domain.IsRedirectToken(f) {
			return true
		}
	}
	return false
}
