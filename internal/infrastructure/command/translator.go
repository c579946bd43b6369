package command

import (
	"strings"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/ports"
)

// Mapping pairs a Unix command (one or two tokens) with its Windows form.
type Mapping struct {
	Unix    string
	Windows string
}

// Translator implements ports.CommandTranslator over an ordered table.
// Unix to Windows is deterministic; the inverse is lossy where several Unix
// commands share one Windows form.
type Translator struct {
	table []Mapping
	flags map[string]string
	index map[string]string
	vocab []string
}

// NewTranslator builds a translator from the built-in tables.
func NewTranslator() *Translator {
	return newTranslator(defaultMappings(), defaultFlags())
}

func newTranslator(table []Mapping, flags map[string]string) *Translator {
	t := &Translator{
		table: table,
		flags: flags,
		index: make(map[string]string, len(table)),
	}
	seen := map[string]bool{}
	for _, m := range table {
		if _, dup := t.index[m.Unix]; !dup {
			t.index[m.Unix] = m.Windows
		}
		name := strings.Fields(m.Unix)[0]
		if !seen[name] {
			seen[name] = true
			t.vocab = append(t.vocab, name)
		}
	}
	return t
}

// Mappings returns a copy of the translation table in lookup order.
func (t *Translator) Mappings() []Mapping {
	out := make([]Mapping, len(t.table))
	copy(out, t.table)
	return out
}

// Vocabulary lists the Unix command names the translator knows.
func (t *Translator) Vocabulary() []string {
	out := make([]string, len(t.vocab))
	copy(out, t.vocab)
	return out
}

// Knows reports whether name belongs to the source vocabulary.
func (t *Translator) Knows(name string) bool {
	for _, v := range t.vocab {
		if v == name {
			return true
		}
	}
	return false
}

// Translate rewrites each pipeline segment of cmd for target. Commands the
// table does not know pass through unchanged, as do redirection targets and
// everything when the target is Unix.
func (t *Translator) Translate(cmd domain.NormalizedCommand, target domain.Platform) domain.NormalizedCommand {
	if target != domain.PlatformWindows || cmd.IsEmpty() {
		return cmd
	}
	segments := splitSegments(cmd.Fields())
	changed := false
	for i, seg := range segments {
		if seg.operator {
			continue
		}
		if out, ok := t.translateSegment(seg.tokens); ok {
			segments[i].tokens = out
			changed = true
		}
	}
	if !changed {
		return cmd
	}
	return domain.NewNormalizedCommand(joinSegments(segments))
}

func (t *Translator) translateSegment(tokens []string) ([]string, bool) {
	if len(tokens) == 0 {
		return nil, false
	}

	var (
		mapped   string
		consumed int
	)
	if len(tokens) > 1 {
		if target, ok := t.index[tokens[0]+" "+tokens[1]]; ok {
			mapped, consumed = target, 2
		}
	}
	if consumed == 0 {
		target, ok := t.index[tokens[0]]
		if !ok {
			return nil, false
		}
		mapped, consumed = target, 1
	}

	out := strings.Fields(mapped)
	rest := tokens[consumed:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		if domain.IsRedirectToken(arg) {
			out = append(out, arg)
			if i+1 < len(rest) {
				i++
				out = append(out, rest[i])
			}
			continue
		}
		if replacement, ok := t.flags[arg]; ok {
			if replacement != "" {
				out = append(out, replacement)
			}
			continue
		}
		out = append(out, arg)
	}
	return out, true
}

// ToSource maps a Windows command back to Unix. At the start of each
// pipeline segment the entry with the longest Windows form prefixing the
// remaining tokens wins, earlier entries on ties, so collisions resolve to
// the first Unix command in table order.
func (t *Translator) ToSource(cmd domain.NormalizedCommand) domain.NormalizedCommand {
	tokens := cmd.Fields()
	if len(tokens) == 0 {
		return cmd
	}

	out := make([]string, 0, len(tokens))
	changed := false
	atStart := true
	for i := 0; i < len(tokens); {
		tok := tokens[i]
		switch {
		case domain.IsSeparatorToken(tok):
			out = append(out, tok)
			atStart = true
			i++
			continue
		case domain.IsRedirectToken(tok):
			out, i = copyRedirect(out, tokens, i)
			continue
		}
		if atStart {
			atStart = false
			if unix, n := t.reverseMatch(tokens[i:]); n > 0 {
				out = append(out, strings.Fields(unix)...)
				i += n
				changed = true
				for i < len(tokens) && !domain.IsSeparatorToken(tokens[i]) {
					if domain.IsRedirectToken(tokens[i]) {
						out, i = copyRedirect(out, tokens, i)
						continue
					}
					out = append(out, t.reverseFlag(tokens[i]))
					i++
				}
				continue
			}
		}
		out = append(out, tok)
		i++
	}
	if !changed {
		return cmd
	}
	return domain.NewNormalizedCommand(strings.Join(out, " "))
}

func (t *Translator) reverseMatch(tokens []string) (string, int) {
	best := ""
	bestLen := 0
	for _, m := range t.table {
		windows := strings.Fields(m.Windows)
		if len(windows) <= bestLen || !hasFoldPrefix(tokens, windows) {
			continue
		}
		best, bestLen = m.Unix, len(windows)
	}
	return best, bestLen
}

func (t *Translator) reverseFlag(arg string) string {
	for _, unix := range flagOrder {
		if windows := t.flags[unix]; windows != "" && strings.EqualFold(windows, arg) {
			return unix
		}
	}
	return arg
}

// copyRedirect appends the redirection at tokens[i] and its target verbatim
// and returns the index after them.
func copyRedirect(out, tokens []string, i int) ([]string, int) {
	out = append(out, tokens[i])
	i++
	if i < len(tokens) && !domain.IsOperatorToken(tokens[i]) {
		out = append(out, tokens[i])
		i++
	}
	return out, i
}

func hasFoldPrefix(tokens, prefix []string) bool {
	if len(tokens) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if !strings.EqualFold(tokens[i], p) {
			return false
		}
	}
	return true
}

type segment struct {
	tokens   []string
	operator bool
}

func splitSegments(tokens []string) []segment {
	var (
		out     []segment
		current []string
	)
	for _, tok := range tokens {
		if domain.IsSeparatorToken(tok) {
			if len(current) > 0 {
				out = append(out, segment{tokens: current})
				current = nil
			}
			out = append(out, segment{tokens: []string{tok}, operator: true})
			continue
		}
		current = append(current, tok)
	}
	if len(current) > 0 {
		out = append(out, segment{tokens: current})
	}
	return out
}

func joinSegments(segments []segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, strings.Join(seg.tokens, " "))
	}
	return strings.Join(parts, " ")
}

func defaultMappings() []Mapping {
	return []Mapping{
		{Unix: "ls", Windows: "dir"},
		{Unix: "pwd", Windows: "cd"},
		{Unix: "rm", Windows: "del"},
		{Unix: "rm -rf", Windows: "rmdir /s /q"},
		{Unix: "cp", Windows: "copy"},
		{Unix: "cp -r", Windows: "xcopy /e /i"},
		{Unix: "mv", Windows: "move"},
		{Unix: "mkdir -p", Windows: "mkdir"},
		{Unix: "touch", Windows: "type nul >"},
		{Unix: "cat", Windows: "type"},
		{Unix: "head", Windows: "more"},
		{Unix: "tail", Windows: "more"},
		{Unix: "chmod", Windows: "icacls"},
		{Unix: "chown", Windows: "icacls"},
		{Unix: "uname", Windows: "ver"},
		{Unix: "uname -a", Windows: "systeminfo"},
		{Unix: "df", Windows: "wmic logicaldisk get size,freespace,caption"},
		{Unix: "ps", Windows: "tasklist"},
		{Unix: "ps aux", Windows: "tasklist /v"},
		{Unix: "top", Windows: "taskmgr"},
		{Unix: "kill", Windows: "taskkill /PID"},
		{Unix: "killall", Windows: "taskkill /IM"},
		{Unix: "clear", Windows: "cls"},
		{Unix: "which", Windows: "where"},
		{Unix: "echo", Windows: "echo"},
	}
}

// flagOrder fixes the reverse flag lookup order.
var flagOrder = []string{"-r", "-f", "-v", "-p", "-a", "-l"}

// defaultFlags maps Unix flags to Windows switches. An empty value drops the
// flag.
func defaultFlags() map[string]string {
	return map[string]string{
		"-r": "/s",
		"-f": "/f",
		"-v": "/v",
		"-p": "",
		"-a": "/a",
		"-l": "",
	}
}

var _ ports.CommandTranslator = (*Translator)(nil)
