package ai

import (
	"regexp"
	"strings"
)

const fence = "```"

// envHints are shell names models put on their own line inside a block.
var envHints = map[string]bool{
	"bash":       true,
	"sh":         true,
	"zsh":        true,
	"fish":       true,
	"powershell": true,
	"pwsh":       true,
	"cmd":        true,
	"command":    true,
	"shell":      true,
	"console":    true,
}

// privilegedPattern matches commands that need an elevated shell.
var privilegedPattern = regexp.MustCompile(
	`(?i)(^|[\s;&|(])(sudo|doas|runas)(\s|$)` +
		`|(^|[\s;&|(])su(\s+-|\s+root|\s*$)` +
		`|set-executionpolicy|chocolatey|-verb\s+runas`,
)

// ExtractCommand returns the first runnable line of the first fenced block
// in answer. The opening line of a multi-line block is a language hint when
// it is a single word.
func ExtractCommand(answer string) (string, bool) {
	start := strings.Index(answer, fence)
	if start < 0 {
		return "", false
	}
	rest := answer[start+len(fence):]
	end := strings.Index(rest, fence)
	if end < 0 {
		return "", false
	}

	lines := strings.Split(rest[:end], "\n")
	if len(lines) > 1 {
		opening := strings.TrimSpace(lines[0])
		if opening == "" || !strings.ContainsAny(opening, " \t") {
			lines = lines[1:]
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") || isEnvHint(line) {
			continue
		}
		line = strings.TrimPrefix(line, "$ ")
		return line, true
	}
	return "", false
}

// RequiresPrivilege reports whether command should be run by hand in an
// elevated shell instead of being queued.
func RequiresPrivilege(command string) bool {
	return privilegedPattern.MatchString(command)
}

func isEnvHint(line string) bool {
	return envHints[strings.ToLower(strings.TrimSuffix(line, ":"))]
}
