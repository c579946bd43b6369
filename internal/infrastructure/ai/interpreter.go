package ai

import (
	"strings"

	"github.com/doeshing/aicmd-go/internal/domain"
)

// Interpreter splits a streamed reply into visible text and suppressed
// reasoning. The tail of a chunk that could be the start of the next marker
// is held back until the following chunk decides it, so markers may straddle
// chunk boundaries.
type Interpreter struct {
	openMarker  string
	closeMarker string
	state       domain.ThinkState
	pending     string
}

// NewInterpreter builds an interpreter in VISIBLE mode.
func NewInterpreter(openMarker, closeMarker string) *Interpreter {
	if openMarker == "" {
		openMarker = domain.DefaultThinkOpen
	}
	if closeMarker == "" {
		closeMarker = domain.DefaultThinkClose
	}
	return &Interpreter{openMarker: openMarker, closeMarker: closeMarker}
}

// Mode reports the current state.
func (in *Interpreter) Mode() domain.ThinkMode {
	return in.state.Mode
}

// Feed consumes one chunk and returns the text that became visible because
// of it, possibly "".
func (in *Interpreter) Feed(chunk string) string {
	data := in.pending + chunk
	in.pending = ""

	var visible strings.Builder
	for data != "" {
		marker := in.awaitedMarker()
		if idx := strings.Index(data, marker); idx >= 0 {
			in.emit(&visible, data[:idx])
			data = data[idx+len(marker):]
			in.toggle()
			continue
		}

		keep := partialMarkerSuffix(data, marker)
		in.emit(&visible, data[:len(data)-keep])
		in.pending = data[len(data)-keep:]
		break
	}
	return visible.String()
}

// Finish flushes held-back text into the current mode and returns any text
// that became visible. It returns domain.ErrEmptyResponse when the whole
// answer has no visible content.
func (in *Interpreter) Finish() (string, error) {
	var visible strings.Builder
	in.emit(&visible, in.pending)
	in.pending = ""
	if strings.TrimSpace(in.state.Visible.String()) == "" {
		return visible.String(), domain.ErrEmptyResponse
	}
	return visible.String(), nil
}

// Visible returns everything emitted so far.
func (in *Interpreter) Visible() string {
	return in.state.Visible.String()
}

// Suppressed returns the accumulated reasoning text.
func (in *Interpreter) Suppressed() string {
	return in.state.Suppressed.String()
}

func (in *Interpreter) awaitedMarker() string {
	if in.state.Mode == domain.ModeSuppressed {
		return in.closeMarker
	}
	return in.openMarker
}

func (in *Interpreter) toggle() {
	if in.state.Mode == domain.ModeSuppressed {
		in.state.Mode = domain.ModeVisible
		return
	}
	in.state.Mode = domain.ModeSuppressed
}

func (in *Interpreter) emit(visible *strings.Builder, text string) {
	if text == "" {
		return
	}
	if in.state.Mode == domain.ModeSuppressed {
		in.state.Suppressed.WriteString(text)
		return
	}
	in.state.Visible.WriteString(text)
	visible.WriteString(text)
}

// partialMarkerSuffix returns the length of the longest suffix of data that
// is a proper prefix of marker.
func partialMarkerSuffix(data, marker string) int {
	limit := len(marker) - 1
	if limit > len(data) {
		limit = len(data)
	}
	for k := limit; k > 0; k-- {
		if strings.HasSuffix(data, marker[:k]) {
			return k
		}
	}
	return 0
}
