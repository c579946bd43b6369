package cli

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/doeshing/aicmd-go/internal/app"
	"github.com/doeshing/aicmd-go/internal/infrastructure/cli/commands"
	configinfra "github.com/doeshing/aicmd-go/internal/infrastructure/config"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// lazyContainer builds the container the first time a command needs it, after
// the persistent flags are parsed.
type lazyContainer struct {
	ctx       context.Context
	settings  app.Settings
	once      sync.Once
	container *app.Container
	err       error
}

func (l *lazyContainer) get() (*app.Container, error) {
	l.once.Do(func() {
		l.container, l.err = app.BuildContainer(l.ctx, l.settings)
	})
	return l.container, l.err
}

func (l *lazyContainer) close() {
	if l.container != nil {
		l.container.Close()
	}
}

// NewRootCmd wires the cobra root command. Without arguments it starts the
// interactive shell; with arguments it handles them as one line. The returned
// function releases whatever the command built and must run after Execute.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, func()) {
	lazy := &lazyContainer{ctx: ctx, settings: app.Settings{Verbose: opts.Verbose}}
	resolve := commands.Resolver(lazy.get)
	loader := func() *configinfra.FileLoader {
		return configinfra.NewFileLoader(lazy.settings.ConfigPath)
	}

	root := &cobra.Command{
		Use:   "aicmd [line]",
		Args:  cobra.ArbitraryArgs,
		Short: "aicmd - a shell with an AI assistant",
		Long: "aicmd runs shell commands and answers questions about them.\n" +
			"Lines starting with / (or with a CJK character) go to the AI, everything else runs as a command.",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := resolve()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return newREPL(cmd, container).Run(cmd.Context())
			}
			return runOneLine(cmd, container, strings.Join(args, " "))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Everything after the first word of a line belongs to the line.
	root.Flags().SetInterspersed(false)

	flags := root.PersistentFlags()
	flags.StringVar(&lazy.settings.ConfigPath, "config", "", "Config file (default ~/.aicmd/config.yaml or $AICMD_CONFIG)")
	flags.StringVarP(&lazy.settings.Backend, "backend", "b", "", "Backend name to use instead of default_backend")
	flags.BoolVar(&lazy.settings.AgentMode, "agent", false, "Ask the AI to answer with runnable commands")
	flags.BoolVar(&lazy.settings.WebSearch, "web", false, "Attach web search results to AI questions")
	flags.BoolVar(&lazy.settings.Verbose, "debug", opts.Verbose, "Log debug output to stderr")

	root.AddCommand(
		newAskCommand(resolve),
		newExecCommand(resolve),
		newSearchCommand(resolve),
		newTranslateCommand(resolve),
		newDoctorCommand(resolve, func() string { return lazy.settings.Backend }),
		commands.NewHistoryCommand(resolve),
		commands.NewConfigCommand(loader),
		commands.NewVersionCommand(),
	)
	return root, lazy.close
}

func newREPL(cmd *cobra.Command, container *app.Container) *REPL {
	return &REPL{
		Handler:    container.Assistant,
		History:    container.HistoryStore,
		Vocabulary: container.Translator.Vocabulary(),
		WorkDir:    container.Executor.WorkDir,
		Renderer:   NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
		Logger:     container.Logger,
	}
}

func hostClipboard() *Clipboard {
	return NewClipboard(runtime.GOOS)
}
