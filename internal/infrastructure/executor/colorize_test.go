package executor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/doeshing/aicmd-go/internal/domain"
)

func TestClassifyLongFormat(t *testing.T) {
	tests := []struct {
		line string
		want domain.EntryClass
	}{
		{line: "drwxr-xr-x  2 me staff   64 Jan  1 10:00 src", want: domain.EntryDirectory},
		{line: "lrwxrwxrwx  1 me staff    7 Jan  1 10:00 link -> target", want: domain.EntrySymlink},
		{line: "-rwxr-xr-x  1 me staff  512 Jan  1 10:00 run.sh", want: domain.EntryExecutable},
		{line: "-rw-r--r--  1 me staff  512 Jan  1 10:00 notes.txt", want: domain.EntryFile},
	}
	for _, tt := range tests {
		if got := classifyUnixLine(tt.line, t.TempDir()); got != tt.want {
			t.Errorf("classifyUnixLine(%q) = %s, want %s", tt.line, got, tt.want)
		}
	}
}

func TestClassifyShortFormat(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions required")
	}
	dir := t.TempDir()
	mustWrite := func(name string, perm os.FileMode) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), perm); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("tool", 0o755)
	mustWrite("readme", 0o644)
	if err := os.Mkdir(filepath.Join(dir, "pkg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "tool"), filepath.Join(dir, "alias")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	tests := map[string]domain.EntryClass{
		"tool":   domain.EntryExecutable,
		"readme": domain.EntryFile,
		"pkg":    domain.EntryDirectory,
		"alias":  domain.EntrySymlink,
		// vanished between listing and coloring
		"gone": domain.EntryFile,
	}
	for name, want := range tests {
		if got := classifyUnixLine(name, dir); got != want {
			t.Errorf("classifyUnixLine(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestColorizeListingKeepsBlankLinesAndTrailingNewline(t *testing.T) {
	out := colorizeListing("a\n\nb\n", domain.PlatformUnix, t.TempDir())
	file := entryColors[domain.EntryFile]
	want := file + "a" + colorReset + "\n\n" + file + "b" + colorReset + "\n"
	if out != want {
		t.Fatalf("colorizeListing = %q, want %q", out, want)
	}
}

func TestClassifyWindowsLine(t *testing.T) {
	tests := []struct {
		line string
		want domain.EntryClass
	}{
		{line: "01/02/2024  10:00 AM    <DIR>          src", want: domain.EntryDirectory},
		{line: "01/02/2024  10:00 AM           1,024 setup.EXE", want: domain.EntryExecutable},
		{line: "01/02/2024  10:00 AM             120 build.bat", want: domain.EntryExecutable},
		{line: "01/02/2024  10:00 AM             120 readme.md", want: domain.EntryFile},
	}
	for _, tt := range tests {
		if got := classifyWindowsLine(tt.line); got != tt.want {
			t.Errorf("classifyWindowsLine(%q) = %s, want %s", tt.line, got, tt.want)
		}
	}
}

func TestListingBaseUsesDirectoryOperand(t *testing.T) {
	work := t.TempDir()
	sub := filepath.Join(work, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if got := listingBase(domain.NewNormalizedCommand("ls -a sub"), work); got != sub {
		t.Fatalf("listingBase = %q, want %q", got, sub)
	}
	if got := listingBase(domain.NewNormalizedCommand("ls a b"), work); got != work {
		t.Fatalf("listingBase with two operands = %q, want %q", got, work)
	}
}
