package domain

// ExecutionResult wraps details from the command executor. It is owned by
// the caller that requested execution.
type ExecutionResult struct {
	Command    string
	Ran        bool
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
	WorkDir    string
}

// Failed reports whether the run produced an error signal.
func (r ExecutionResult) Failed() bool {
	return !r.Ran || r.ExitCode != 0
}

// FailedResult converts a failure into the stdout="", stderr=<message> shape.
func FailedResult(command string, message string) ExecutionResult {
	return ExecutionResult{
		Command:  command,
		Stderr:   message,
		ExitCode: -1,
	}
}

// EntryClass classifies a directory-listing entry for colorization.
type EntryClass string

const (
	EntryDirectory  EntryClass = "dir"
	EntryExecutable EntryClass = "exe"
	EntrySymlink    EntryClass = "link"
	EntryFile       EntryClass = "file"
)
