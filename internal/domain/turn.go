package domain

// TurnKind classifies how a submitted line was routed.
type TurnKind string

const (
	TurnCommand  TurnKind = "command"
	TurnQuery    TurnKind = "query"
	TurnRejected TurnKind = "rejected"
	TurnEmpty    TurnKind = "empty"
	// TurnSuggested marks a command proposed by the assistant and placed in
	// the input history for recall.
	TurnSuggested TurnKind = "suggested"
)

// TurnResult is what the orchestrator hands back to the front end after one
// line. Err is informational; the loop always continues.
type TurnResult struct {
	Kind      TurnKind
	Input     string
	Backend   string
	Execution *ExecutionResult
	Answer    *Answer
	Sources   []SearchResult
	Err       error
}

// Succeeded reports whether the turn completed without an error and, for
// commands, with a zero exit status.
func (t TurnResult) Succeeded() bool {
	if t.Err != nil {
		return false
	}
	if t.Execution != nil {
		return !t.Execution.Failed()
	}
	return t.Kind == TurnCommand || t.Kind == TurnQuery
}

// NextInput returns a command to prefill into the next prompt, or "".
func (t TurnResult) NextInput() string {
	if t.Answer == nil || t.Answer.Command == "" || t.Answer.RequiresPrivilege {
		return ""
	}
	return t.Answer.Command
}
