package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/doeshing/aicmd-go/internal/pkg/filesystem"
)

var builtinWords = []string{"exit", "quit"}

// completer offers command names for the first word and paths relative to
// the session directory for the rest.
type completer struct {
	vocabulary []string
	workDir    func() string
}

// Do implements readline.AutoCompleter. Candidates are returned as the part
// still to be typed.
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	typed := string(line[:pos])
	word := typed
	if idx := strings.LastIndexAny(typed, " \t"); idx >= 0 {
		word = typed[idx+1:]
	}

	var candidates []string
	if strings.TrimSpace(typed) == word && !strings.ContainsAny(word, `/\`) {
		candidates = c.commandNames(word)
	} else {
		candidates = c.paths(word)
	}

	out := make([][]rune, 0, len(candidates))
	for _, candidate := range candidates {
		if rest := strings.TrimPrefix(candidate, word); rest != "" && strings.HasPrefix(candidate, word) {
			out = append(out, []rune(rest))
		}
	}
	return out, len([]rune(word))
}

func (c *completer) commandNames(prefix string) []string {
	seen := map[string]bool{}
	var names []string
	for _, name := range append(append([]string{}, builtinWords...), c.vocabulary...) {
		lower := strings.ToLower(name)
		if seen[lower] || !strings.HasPrefix(lower, strings.ToLower(prefix)) {
			continue
		}
		seen[lower] = true
		names = append(names, prefix+name[len(prefix):])
	}
	sort.Strings(names)
	return names
}

func (c *completer) paths(word string) []string {
	dirPart, base := filepath.Split(word)
	dir := filesystem.ExpandHome(dirPart)
	if !filepath.IsAbs(dir) && c.workDir != nil {
		dir = filepath.Join(c.workDir(), dir)
	}
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		if entry.IsDir() {
			name += string(filepath.Separator)
		}
		out = append(out, dirPart+name)
	}
	sort.Strings(out)
	return out
}

var _ readline.AutoCompleter = (*completer)(nil)
