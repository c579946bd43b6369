package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/doeshing/aicmd-go/internal/domain"
)

// Ticker shows how long the assistant has been waiting for the first token.
type Ticker struct {
	label    string
	interval time.Duration
	writer   io.Writer
	now      func() time.Time
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// NewTicker creates a ticker that redraws "label 1.2s" on w.
func NewTicker(w io.Writer, label string) *Ticker {
	return &Ticker{
		label:    label,
		interval: domain.TickerInterval,
		writer:   w,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start begins redrawing. Calling Start twice has no effect.
func (t *Ticker) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	start := t.now()
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		tick := time.NewTicker(t.interval)
		defer tick.Stop()
		for {
			fmt.Fprintf(t.writer, "\r%s %s", t.label, formatElapsed(t.now().Sub(start)))
			select {
			case <-t.stopChan:
				fmt.Fprint(t.writer, "\r\033[K")
				return
			case <-tick.C:
			}
		}
	}()
}

// Stop clears the line and waits for the redraw goroutine to exit.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	close(t.stopChan)
	t.wg.Wait()
}

// formatElapsed renders 1.2s, 3m4.5s or 1h2m3.0s.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := d.Seconds()
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", seconds)
	case d < time.Hour:
		m := int(d / time.Minute)
		return fmt.Sprintf("%dm%.1fs", m, seconds-float64(m*60))
	default:
		h := int(d / time.Hour)
		m := int((d % time.Hour) / time.Minute)
		return fmt.Sprintf("%dh%dm%.1fs", h, m, seconds-float64(h*3600+m*60))
	}
}
