package contextcollector

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/doeshing/aicmd-go/internal/domain"
)

func TestAssemblerEvictsOldestFirst(t *testing.T) {
	a := NewAssembler(3, 0)
	for _, cmd := range []string{"one", "two", "three", "four", "five"} {
		a.Record(domain.CommandEntry(cmd, "", ""))
	}

	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}
	var got []string
	for _, entry := range a.Recent(0) {
		got = append(got, entry.Command)
	}
	if diff := cmp.Diff([]string{"three", "four", "five"}, got); diff != "" {
		t.Fatalf("Recent mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemblerRecentWindow(t *testing.T) {
	a := NewAssembler(10, 0)
	a.Record(domain.CommandEntry("ls", "a.txt", ""))
	a.Record(domain.QueryEntry("what is a.txt", "a text file"))
	a.Record(domain.CommandEntry("cat a.txt", "hello", ""))

	want := []domain.ContextEntry{
		{Kind: domain.ContextQuery, Query: "what is a.txt", Answer: "a text file"},
		{Kind: domain.ContextCommand, Command: "cat a.txt", Output: "hello"},
	}
	got := a.Recent(2)
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(domain.ContextEntry{}, "Timestamp")); diff != "" {
		t.Fatalf("Recent(2) mismatch (-want +got):\n%s", diff)
	}
	if n := len(a.Recent(50)); n != 3 {
		t.Fatalf("Recent(50) returned %d entries, want 3", n)
	}
}

func TestAssemblerTranscript(t *testing.T) {
	a := NewAssembler(10, 0)
	a.Record(domain.CommandEntry("ls", "a.txt\n", ""))
	a.Record(domain.CommandEntry("cat nope", "", "cat: nope: No such file or directory\n"))
	a.Record(domain.QueryEntry("list files", "use ls"))

	want := strings.Join([]string{
		"Command: ls",
		"Output:",
		"a.txt",
		"---",
		"Command: cat nope",
		"Error:",
		"cat: nope: No such file or directory",
		"---",
		"User: list files",
		"AI: use ls",
		"---",
	}, "\n")
	if diff := cmp.Diff(want, a.Transcript(10)); diff != "" {
		t.Fatalf("Transcript mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemblerTranscriptCapsOutput(t *testing.T) {
	a := NewAssembler(10, 5)
	a.Record(domain.CommandEntry("seq 100", "héllo world", ""))

	want := "Command: seq 100\nOutput:\nhéllo" + truncatedSuffix + "\n---"
	if got := a.Transcript(1); got != want {
		t.Fatalf("Transcript() = %q, want %q", got, want)
	}
}

func TestAssemblerEmpty(t *testing.T) {
	a := NewAssemblerFromConfig(domain.Config{})
	if got := a.Transcript(10); got != "" {
		t.Fatalf("Transcript() = %q, want empty", got)
	}
	if len(a.entries) != domain.DefaultContextRetention {
		t.Fatalf("capacity = %d, want %d", len(a.entries), domain.DefaultContextRetention)
	}
}
