package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/aicmd-go/internal/app"
	"github.com/doeshing/aicmd-go/internal/application/doctor"
	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/infrastructure/cli/commands"
)

// ExitError carries a process exit status without a message of its own; the
// reason has already been printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// turnExit maps a finished turn to the process outcome.
func turnExit(result domain.TurnResult) error {
	if result.Execution != nil && result.Execution.ExitCode != 0 {
		return &ExitError{Code: result.Execution.ExitCode}
	}
	if result.Err != nil {
		return &ExitError{Code: 1}
	}
	return nil
}

func runOneLine(cmd *cobra.Command, container *app.Container, line string) error {
	out := writerFor(line, cmd.OutOrStdout(), cmd.ErrOrStderr())
	result := container.Assistant.HandleLine(cmd.Context(), line, out)
	NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr()).Turn(result)
	return turnExit(result)
}

func newAskCommand(resolve commands.Resolver) *cobra.Command {
	var copyCommand bool

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask the AI one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := resolve()
			if err != nil {
				return err
			}
			line := "/" + strings.Join(args, " ")
			result := container.Assistant.HandleLine(cmd.Context(), line, NewStreamWriter(cmd.OutOrStdout(), cmd.ErrOrStderr()))
			renderer := NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
			renderer.Turn(result)

			if copyCommand && result.Answer != nil && result.Answer.Command != "" {
				if err := hostClipboard().Copy(result.Answer.Command); err != nil {
					renderer.Notice(fmt.Sprintf("Could not copy to clipboard: %v", err))
				} else {
					renderer.Notice("Command copied to clipboard.")
				}
			}
			return turnExit(result)
		},
	}

	cmd.Flags().BoolVarP(&copyCommand, "copy", "c", false, "Copy the suggested command to the clipboard")
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newExecCommand(resolve commands.Resolver) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <command...>",
		Short: "Run one command through the denylist and translator",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := resolve()
			if err != nil {
				return err
			}
			result := container.Assistant.RunCommand(cmd.Context(), strings.Join(args, " "))
			NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr()).Turn(result)
			return turnExit(result)
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newSearchCommand(resolve commands.Resolver) *cobra.Command {
	var (
		showBodies bool
		clearCache bool
	)

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Run the web search used to back AI answers",
		Args: func(cmd *cobra.Command, args []string) error {
			if clearCache {
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := resolve()
			if err != nil {
				return err
			}
			if clearCache {
				if container.SearchCache == nil {
					return errors.New("search cache is disabled")
				}
				if err := container.SearchCache.Clear(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", container.SearchCache.Dir())
				if len(args) == 0 {
					return nil
				}
			}
			results := container.Search.Search(cmd.Context(), strings.Join(args, " "))
			renderer := NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if len(results) == 0 {
				renderer.Notice("No results.")
				return nil
			}
			renderer.Sources(results)
			if showBodies {
				for _, res := range results {
					fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n%s\n", res.URL, res.Body)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showBodies, "bodies", false, "Print the extracted page text")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Remove cached search results first")
	return cmd
}

func newTranslateCommand(resolve commands.Resolver) *cobra.Command {
	var (
		target  string
		reverse bool
	)

	cmd := &cobra.Command{
		Use:   "translate <command...>",
		Short: "Show how a command maps between Unix and Windows vocabularies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := resolve()
			if err != nil {
				return err
			}
			parsed, err := container.Parser.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if reverse {
				fmt.Fprintln(cmd.OutOrStdout(), container.Translator.ToSource(parsed).Text)
				return nil
			}
			platform := container.Executor.Platform()
			if target != "" {
				platform = domain.Platform(target)
			}
			if platform != domain.PlatformUnix && platform != domain.PlatformWindows {
				return fmt.Errorf("unknown platform %q (want unix or windows)", target)
			}
			fmt.Fprintln(cmd.OutOrStdout(), container.Translator.Translate(parsed, platform).Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "to", "", "Target vocabulary: unix or windows (default: this host)")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Map a Windows command back to its Unix form")
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newDoctorCommand(resolve commands.Resolver, backend func() string) *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, denylist, history and backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := resolve()
			if err != nil {
				return err
			}
			report, err := container.DoctorService.Run(cmd.Context(), doctor.Options{Probe: probe, Backend: backend()})
			NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr()).HealthReport(report)
			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			if !report.Healthy() {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Send a short request to the backend and report latency")
	return cmd
}
