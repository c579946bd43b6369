// Package executor runs normalized commands on the host and owns the
// session's working directory.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/pkg/filesystem"
	"github.com/doeshing/aicmd-go/internal/ports"
)

// Options configures a LocalExecutor.
type Options struct {
	Platform domain.Platform
	Shell    string
	WorkDir  string
	Colorize bool
	Logger   ports.Logger
}

// LocalExecutor runs commands on the host shell. The working directory and
// the previous directory for "cd -" live here rather than in the process.
type LocalExecutor struct {
	launcher processLauncher
	colorize bool
	logger   ports.Logger

	workDir string
	lastDir string
}

// NewLocalExecutor builds a new executor for the host platform. An empty
// shell means /bin/sh on Unix.
func NewLocalExecutor(opts Options) *LocalExecutor {
	if opts.Platform == "" {
		opts.Platform = HostPlatform()
	}
	if opts.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.WorkDir = wd
		} else {
			opts.WorkDir = filesystem.UserHomeDir()
		}
	}
	return &LocalExecutor{
		launcher: launcherFor(opts.Platform, opts.Shell),
		colorize: opts.Colorize,
		logger:   opts.Logger,
		workDir:  opts.WorkDir,
	}
}

// Platform reports which command vocabulary the executor expects.
func (e *LocalExecutor) Platform() domain.Platform {
	return e.launcher.platform()
}

// WorkDir returns the directory commands run in.
func (e *LocalExecutor) WorkDir() string {
	return e.workDir
}

// Execute implements ports.CommandExecutor.
func (e *LocalExecutor) Execute(ctx context.Context, cmd domain.NormalizedCommand) domain.ExecutionResult {
	if cmd.IsEmpty() {
		return domain.FailedResult(cmd.Text, "empty command")
	}

	name := strings.ToLower(cmd.Name())
	if name == "cd" || name == "chdir" {
		fields := cmd.Fields()
		if idx := firstSeparator(fields); idx >= 0 {
			return e.changeDirThen(ctx, cmd, fields, idx)
		}
		return e.changeDir(cmd)
	}
	return e.launch(ctx, cmd, name)
}

// changeDirThen applies the leading cd of a compound line in process and
// runs the remainder in the new directory, honouring the separator the way
// a POSIX shell would. A cd inside a pipeline or a background job runs in a
// subshell, so such lines go to the shell unchanged.
func (e *LocalExecutor) changeDirThen(ctx context.Context, cmd domain.NormalizedCommand, fields []string, idx int) domain.ExecutionResult {
	sep := fields[idx]
	if sep == "|" || sep == "&" {
		return e.launch(ctx, cmd, strings.ToLower(cmd.Name()))
	}

	cdResult := e.changeDir(domain.NewNormalizedCommand(strings.Join(fields[:idx], " ")))
	cdResult.Command = cmd.Text

	rest := domain.NewNormalizedCommand(strings.Join(fields[idx+1:], " "))
	if rest.IsEmpty() {
		return cdResult
	}
	switch {
	case sep == "&&" && cdResult.Failed():
		return cdResult
	case sep == "||" && !cdResult.Failed():
		return cdResult
	}

	next := e.Execute(ctx, rest)
	next.Command = cmd.Text
	next.Stdout = joinOutput(cdResult.Stdout, next.Stdout)
	next.Stderr = joinOutput(cdResult.Stderr, next.Stderr)
	return next
}

// firstSeparator returns the index of the first command separator token, or
// -1. Redirections do not separate commands.
func firstSeparator(fields []string) int {
	for i, f := range fields {
		if domain.IsSeparatorToken(f) {
			return i
		}
	}
	return -1
}

func joinOutput(first, second string) string {
	if first == "" {
		return second
	}
	if second == "" {
		return first
	}
	if !strings.HasSuffix(first, "\n") {
		first += "\n"
	}
	return first + second
}

func (e *LocalExecutor) launch(ctx context.Context, cmd domain.NormalizedCommand, name string) domain.ExecutionResult {
	c := e.launcher.command(ctx, cmd)
	c.Dir = e.workDir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	duration := time.Since(start).Milliseconds()

	result := domain.ExecutionResult{
		Command:    cmd.Text,
		Ran:        err == nil,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: duration,
		WorkDir:    e.workDir,
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		result.Ran = true
		result.ExitCode = exitErr.ExitCode()
	case err != nil:
		e.logFailure("command failed to start", err, cmd.Text)
		result.Stdout = ""
		result.Stderr = fmt.Sprintf("command execution error: %v", err)
		result.ExitCode = -1
		return result
	}

	if e.colorize && isListing(name) && result.Stdout != "" {
		result.Stdout = colorizeListing(result.Stdout, e.Platform(), listingBase(cmd, e.workDir))
	}
	return result
}

func (e *LocalExecutor) changeDir(cmd domain.NormalizedCommand) domain.ExecutionResult {
	args := cmd.Args()
	if e.Platform() == domain.PlatformWindows && len(args) > 0 && strings.EqualFold(args[0], "/d") {
		args = args[1:]
	}

	if len(args) == 0 {
		return domain.ExecutionResult{Command: cmd.Text, Ran: true, Stdout: e.workDir, WorkDir: e.workDir}
	}

	target := domain.Unquote(args[0])
	back := target == "-"
	if back {
		if e.lastDir == "" {
			return domain.FailedResult(cmd.Text, "cd: no previous directory")
		}
		target = e.lastDir
	}

	target = filesystem.ExpandHome(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(e.workDir, target)
	}
	target = filepath.Clean(target)

	info, err := os.Stat(target)
	if err != nil {
		return domain.FailedResult(cmd.Text, fmt.Sprintf("cd: %v", err))
	}
	if !info.IsDir() {
		return domain.FailedResult(cmd.Text, fmt.Sprintf("cd: not a directory: %s", target))
	}

	e.lastDir = e.workDir
	e.workDir = target
	if e.logger != nil {
		e.logger.Debug("working directory changed", map[string]interface{}{"from": e.lastDir, "to": target})
	}

	result := domain.ExecutionResult{Command: cmd.Text, Ran: true, WorkDir: target}
	if back {
		result.Stdout = target
	}
	return result
}

func (e *LocalExecutor) logFailure(msg string, err error, command string) {
	if e.logger != nil {
		e.logger.Error(msg, err, map[string]interface{}{"command": command})
	}
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
