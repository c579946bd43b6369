package command

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doeshing/aicmd-go/internal/domain"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	denylist, err := NewDenylist("")
	if err != nil {
		t.Fatalf("NewDenylist error: %v", err)
	}
	return NewParser(denylist, nil)
}

func rejectionReason(t *testing.T, err error) string {
	t.Helper()
	var rejected *domain.RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected *domain.RejectedError, got %v", err)
	}
	return rejected.Reason
}

func TestParserRejectsEmptyInput(t *testing.T) {
	parser := newTestParser(t)
	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := parser.Parse(in)
		if got := rejectionReason(t, err); got != domain.RejectEmpty {
			t.Fatalf("Parse(%q) reason = %q, want empty", in, got)
		}
	}
}

func TestParserRejectsDenylistedSubstrings(t *testing.T) {
	parser := newTestParser(t)
	inputs := []string{
		"rm -rf /",
		"sudo RM -RF /var",
		"  rm -rf *  ",
		"mkfs.ext4 /dev/sdb1",
		"FORMAT C:",
		":(){:|:&};:",
		":(){ :|:& };:",
		"echo hi > /dev/sda",
		"dd if=/dev/zero of=/dev/sdb",
		// conservative policy: a harmless command mentioning a pattern is rejected too
		"git log --format=oneline",
		"cat notes/rm -rf /tmp.txt",
	}
	for _, in := range inputs {
		_, err := parser.Parse(in)
		if got := rejectionReason(t, err); got != domain.RejectDenylisted {
			t.Errorf("Parse(%q) reason = %q, want denylisted", in, got)
		}
	}
}

func TestParserPadsOperators(t *testing.T) {
	parser := newTestParser(t)
	tests := []struct {
		in   string
		want string
	}{
		{in: "ls|grep go", want: "ls | grep go"},
		{in: "make&&make install", want: "make && make install"},
		{in: "echo a>>log.txt", want: "echo a >> log.txt"},
		{in: "ls | wc -l", want: "ls | wc -l"},
		{in: "a;b", want: "a ; b"},
		{in: `echo "a|b" 'c>d'`, want: `echo "a|b" 'c>d'`},
		{in: `echo a\|b`, want: `echo a\|b`},
		{in: "sort<in.txt", want: "sort < in.txt"},
		{in: "sleep 1 &", want: "sleep 1 &"},
	}
	for _, tt := range tests {
		got, err := parser.Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.in, err)
		}
		if got.Text != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got.Text, tt.want)
		}
	}
}

func TestParserRejectsUnterminatedQuote(t *testing.T) {
	parser := newTestParser(t)
	for _, in := range []string{`echo "abc`, `echo 'abc`, `grep "a' b`} {
		_, err := parser.Parse(in)
		if got := rejectionReason(t, err); got != domain.RejectUnterminatedQuote {
			t.Errorf("Parse(%q) reason = %q, want unterminated quote", in, got)
		}
	}
}

func countUnescapedQuotes(s string) int {
	count := 0
	escaped := false
	var quote rune
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case r == '"' || r == '\'':
			if quote == 0 {
				quote = r
				count++
			} else if r == quote {
				quote = 0
				count++
			}
		}
	}
	return count
}

func TestParserPreservesQuoteBalance(t *testing.T) {
	parser := newTestParser(t)
	inputs := []string{
		`echo "hello world"`,
		`grep 'a b' file|sort`,
		`echo "it's" 'say "hi"'`,
		`echo \"literal`,
		`printf "%s\n" "a;b" && echo 'x&y'`,
	}
	for _, in := range inputs {
		got, err := parser.Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", in, err)
		}
		if want, have := countUnescapedQuotes(in), countUnescapedQuotes(got.Text); want != have {
			t.Errorf("Parse(%q) = %q: %d quotes, want %d", in, got.Text, have, want)
		}
	}
}

func TestDenylistLoadsExtraRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "denylist.yaml")
	data := "denylist:\n  patterns:\n    - pattern: \"Shutdown -h\"\n      message: no shutdowns\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	denylist, err := NewDenylist(path)
	if err != nil {
		t.Fatalf("NewDenylist error: %v", err)
	}
	if _, hit := denylist.Match("sudo shutdown -h now"); !hit {
		t.Fatal("expected extension rule to match")
	}
	if _, hit := denylist.Match("rm -rf /"); !hit {
		t.Fatal("defaults must stay active when a file is loaded")
	}
	if len(denylist.Rules()) != len(defaultRules())+1 {
		t.Fatalf("unexpected rule count %d", len(denylist.Rules()))
	}
}

func TestDenylistMissingFileUsesDefaults(t *testing.T) {
	denylist, err := NewDenylist(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("NewDenylist error: %v", err)
	}
	if len(denylist.Rules()) != len(defaultRules()) {
		t.Fatalf("expected defaults only, got %d", len(denylist.Rules()))
	}
}

func TestDenylistRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "denylist.yaml")
	if err := os.WriteFile(path, []byte("denylist: [unclosed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewDenylist(path); err == nil || !strings.Contains(err.Error(), "parse denylist") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
