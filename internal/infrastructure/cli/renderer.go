package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/aicmd-go/internal/domain"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	suggestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3"))
)

// Renderer prints turn outcomes. Answer text is not repeated here; it has
// already been streamed.
type Renderer struct {
	Out io.Writer
	Err io.Writer
}

// NewRenderer builds a renderer writing results to out and problems to errOut.
func NewRenderer(out, errOut io.Writer) *Renderer {
	return &Renderer{Out: out, Err: errOut}
}

// Turn renders whatever the user has not seen yet for result.
func (r *Renderer) Turn(result domain.TurnResult) {
	switch result.Kind {
	case domain.TurnEmpty:
		return
	case domain.TurnRejected:
		fmt.Fprintln(r.Err, errorStyle.Render(describeError(result.Err)))
		return
	}

	if result.Execution != nil {
		r.Execution(*result.Execution)
	}
	if result.Err != nil {
		fmt.Fprintln(r.Err, errorStyle.Render(describeError(result.Err)))
		return
	}
	if len(result.Sources) > 0 {
		r.Sources(result.Sources)
	}
	if result.Answer != nil {
		r.Suggestion(*result.Answer)
	}
}

// Execution prints captured output unstyled. Stderr goes to the error
// writer.
func (r *Renderer) Execution(res domain.ExecutionResult) {
	writeBlock(r.Out, res.Stdout)
	writeBlock(r.Err, res.Stderr)
}

// Suggestion tells the user what will happen with an extracted command.
func (r *Renderer) Suggestion(answer domain.Answer) {
	switch {
	case answer.Command == "":
	case answer.RequiresPrivilege:
		fmt.Fprintln(r.Out, noticeStyle.Render("This command needs elevated privileges. Run it yourself in an administrator shell:"))
		fmt.Fprintln(r.Out, "  "+answer.Command)
	default:
		fmt.Fprintln(r.Out, suggestStyle.Render("Suggested: ")+answer.Command)
		fmt.Fprintln(r.Out, mutedStyle.Render("Press Enter on the next prompt to run it, or edit it first."))
	}
}

// Sources lists the web pages that were attached to the request.
func (r *Renderer) Sources(results []domain.SearchResult) {
	fmt.Fprintln(r.Out, mutedStyle.Render("Sources:"))
	for _, res := range results {
		title := res.Title
		if title == "" {
			title = res.URL
		}
		fmt.Fprintln(r.Out, mutedStyle.Render(fmt.Sprintf("  [%.2f] %s - %s", res.CredibilityScore, title, res.URL)))
	}
}

// HealthReport prints one line per check.
func (r *Renderer) HealthReport(report domain.HealthReport) {
	for _, check := range report.Checks {
		status := strings.ToUpper(string(check.Status))
		style := suggestStyle
		switch check.Status {
		case domain.HealthWarn:
			style = noticeStyle
		case domain.HealthError:
			style = errorStyle
		}
		fmt.Fprintf(r.Out, "%s %s - %s\n", style.Render("["+status+"]"), check.Name, check.Details)
	}
}

// Notice prints an informational line on the error writer.
func (r *Renderer) Notice(msg string) {
	fmt.Fprintln(r.Err, noticeStyle.Render(msg))
}

func describeError(err error) string {
	if err == nil {
		return ""
	}
	var streamErr *domain.StreamError
	if errors.As(err, &streamErr) {
		return streamErr.UserMessage()
	}
	if errors.Is(err, domain.ErrEmptyResponse) {
		return "The AI returned no usable response."
	}
	return err.Error()
}

func writeBlock(w io.Writer, text string) {
	if text == "" {
		return
	}
	fmt.Fprint(w, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(w)
	}
}
