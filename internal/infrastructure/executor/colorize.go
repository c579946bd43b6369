package executor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/doeshing/aicmd-go/internal/domain"
)

const colorReset = "\033[0m"

// entryColors holds the ANSI color per entry class.
var entryColors = map[domain.EntryClass]string{
	domain.EntryDirectory:  "\033[1;34m",
	domain.EntryExecutable: "\033[1;32m",
	domain.EntrySymlink:    "\033[1;36m",
	domain.EntryFile:       "\033[0;37m",
}

var windowsExecutableExt = []string{".exe", ".bat", ".cmd", ".ps1", ".sh"}

func isListing(name string) bool {
	return name == "ls" || name == "dir"
}

// listingBase returns the directory a short listing's names are relative
// to: the single directory argument when one is given, else workDir.
func listingBase(cmd domain.NormalizedCommand, workDir string) string {
	var operands []string
	for _, arg := range cmd.Args() {
		if domain.IsOperatorToken(arg) {
			break
		}
		if strings.HasPrefix(arg, "-") || (strings.HasPrefix(arg, "/") && len(arg) == 2) {
			continue
		}
		operands = append(operands, domain.Unquote(arg))
	}
	if len(operands) != 1 {
		return workDir
	}
	dir := operands[0]
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(workDir, dir)
	}
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return workDir
}

// colorizeListing wraps every non-blank line of a directory listing in the
// color for its entry class. Lines that cannot be classified are plain files.
func colorizeListing(output string, platform domain.Platform, base string) string {
	trailing := strings.HasSuffix(output, "\n")
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var class domain.EntryClass
		if platform == domain.PlatformWindows {
			class = classifyWindowsLine(line)
		} else {
			class = classifyUnixLine(strings.TrimRight(line, "\r"), base)
		}
		lines[i] = entryColors[class] + line + colorReset
	}
	out := strings.Join(lines, "\n")
	if trailing {
		out += "\n"
	}
	return out
}

func classifyUnixLine(line, base string) domain.EntryClass {
	switch line[0] {
	case 'd', 'l', '-':
		if class, ok := classifyLongFormat(line); ok {
			return class
		}
	}
	return classifyPath(filepath.Join(base, line))
}

// classifyLongFormat reads the mode column of `ls -l` output.
func classifyLongFormat(line string) (domain.EntryClass, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields[0]) < 10 {
		return "", false
	}
	mode := fields[0]
	switch {
	case mode[0] == 'd':
		return domain.EntryDirectory, true
	case mode[0] == 'l':
		return domain.EntrySymlink, true
	case strings.ContainsRune(mode[1:10], 'x'):
		return domain.EntryExecutable, true
	default:
		return domain.EntryFile, true
	}
}

func classifyPath(path string) domain.EntryClass {
	info, err := os.Lstat(path)
	if err != nil {
		return domain.EntryFile
	}
	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return domain.EntrySymlink
	case mode.IsDir():
		return domain.EntryDirectory
	case mode.Perm()&0o111 != 0:
		return domain.EntryExecutable
	default:
		return domain.EntryFile
	}
}

func classifyWindowsLine(line string) domain.EntryClass {
	if strings.Contains(line, "<DIR>") {
		return domain.EntryDirectory
	}
	lowered := strings.ToLower(strings.TrimSpace(line))
	for _, ext := range windowsExecutableExt {
		if strings.HasSuffix(lowered, ext) {
			return domain.EntryExecutable
		}
	}
	return domain.EntryFile
}
