package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/doeshing/aicmd-go/internal/ports"
)

const waitingLabel = "Thinking..."

// streamWriter prints answer text as it arrives. While nothing has arrived
// yet an elapsed-time ticker runs on the status writer.
type streamWriter struct {
	out     io.Writer
	ticker  *Ticker
	once    sync.Once
	written bool
	endsNL  bool
}

// NewStreamWriter builds a writer for out. The ticker is drawn on status only
// when status is a terminal.
func NewStreamWriter(out, status io.Writer) *streamWriter {
	s := &streamWriter{out: out}
	if isTerminal(status) {
		s.ticker = NewTicker(status, waitingLabel)
		s.ticker.Start()
	}
	return s
}

func (s *streamWriter) WriteChunk(text string) {
	if text == "" {
		return
	}
	s.stopTicker()
	fmt.Fprint(s.out, text)
	s.written = true
	s.endsNL = text[len(text)-1] == '\n'
}

// Done stops the ticker and ends the answer on a fresh line.
func (s *streamWriter) Done() {
	s.stopTicker()
	if s.written && !s.endsNL {
		fmt.Fprintln(s.out)
	}
}

func (s *streamWriter) stopTicker() {
	s.once.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var _ ports.StreamWriter = (*streamWriter)(nil)
