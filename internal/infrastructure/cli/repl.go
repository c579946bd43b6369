package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/doeshing/aicmd-go/internal/application/assistant"
	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/pkg/filesystem"
	"github.com/doeshing/aicmd-go/internal/ports"
)

const interruptAgainNotice = "Press Ctrl-C again to exit."

// TurnHandler processes one submitted line.
type TurnHandler interface {
	HandleLine(ctx context.Context, line string, out ports.StreamWriter) domain.TurnResult
}

// lineReader is the part of *readline.Instance the loop drives.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(string)
	SaveHistory(string) error
	WriteStdin([]byte) (int, error)
	Close() error
}

// REPL is the interactive front end: read a line, hand it to the assistant,
// render the outcome, repeat.
type REPL struct {
	Handler    TurnHandler
	History    ports.HistoryStore
	Vocabulary []string
	WorkDir    func() string
	Renderer   *Renderer
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     ports.Logger
}

// Run opens the line editor on the terminal and loops until exit, EOF, a
// second consecutive Ctrl-C or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            r.prompt(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistoryLimit:      domain.DefaultHistoryMaxEntries,
		HistorySearchFold: true,
		AutoComplete:      &completer{vocabulary: r.Vocabulary, workDir: r.WorkDir},
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	r.preload(ctx, rl)
	return r.loop(ctx, rl)
}

// preload replays stored inputs into the editor, oldest first, so arrow-up
// recalls the most recent line.
func (r *REPL) preload(ctx context.Context, rl lineReader) {
	if r.History == nil {
		return
	}
	records, err := r.History.Recent(ctx, domain.DefaultHistoryPreload)
	if err != nil {
		r.warn("history preload failed", err)
		return
	}
	for i := len(records) - 1; i >= 0; i-- {
		if input := strings.TrimSpace(records[i].Input); input != "" {
			_ = rl.SaveHistory(input)
		}
	}
}

func (r *REPL) loop(ctx context.Context, rl lineReader) error {
	var (
		prefill     string
		interrupted bool
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rl.SetPrompt(r.prompt())
		if prefill != "" {
			_, _ = rl.WriteStdin([]byte(prefill))
			prefill = ""
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if interrupted {
				return nil
			}
			interrupted = true
			r.Renderer.Notice(interruptAgainNotice)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		interrupted = false

		trimmed := strings.TrimSpace(line)
		if trimmed == "exit" || trimmed == "quit" {
			return nil
		}

		result := r.handle(ctx, line)
		r.Renderer.Turn(result)

		if result.Answer != nil && result.Answer.Command != "" {
			_ = rl.SaveHistory(result.Answer.Command)
		}
		prefill = result.NextInput()
	}
}

// handle runs one turn. Ctrl-C during the turn cancels it and returns to the
// prompt.
func (r *REPL) handle(ctx context.Context, line string) domain.TurnResult {
	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	return r.Handler.HandleLine(turnCtx, line, writerFor(line, r.Stdout, r.Stderr))
}

// writerFor returns a stream writer for lines that go to the AI and nil for
// commands.
func writerFor(line string, stdout, stderr io.Writer) ports.StreamWriter {
	if kind, _ := assistant.Classify(line); kind == domain.TurnQuery {
		return NewStreamWriter(stdout, stderr)
	}
	return nil
}

func (r *REPL) prompt() string {
	dir := ""
	if r.WorkDir != nil {
		dir = r.WorkDir()
	}
	if home := filesystem.UserHomeDir(); home != "" && strings.HasPrefix(dir, home) {
		dir = "~" + strings.TrimPrefix(dir, home)
	}
	return promptStyle.Render(filepath.ToSlash(dir)) + " > "
}

func (r *REPL) warn(msg string, err error) {
	if r.Logger != nil {
		r.Logger.Warn(msg, map[string]interface{}{"error": err.Error()})
	}
}
