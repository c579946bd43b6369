package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/aicmd-go/internal/ports"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(resolve Resolver) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the input history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(resolve),
		newHistorySearchCommand(resolve),
		newHistoryClearCommand(resolve),
		newHistoryStatsCommand(resolve),
	)

	return historyCmd
}

func newHistoryListCommand(resolve Resolver) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent inputs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(resolve)
			if err != nil {
				return err
			}
			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to retrieve history records: %w", err)
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")
	return cmd
}

func newHistorySearchCommand(resolve Resolver) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search inputs containing a term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(resolve)
			if err != nil {
				return err
			}
			records, err := store.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return fmt.Errorf("failed to search history: %w", err)
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistorySearchLimit, "Limit search results")
	return cmd
}

func newHistoryClearCommand(resolve Resolver) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored input",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(resolve)
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgHistoryCleared)
			return nil
		},
	}
}

func newHistoryStatsCommand(resolve Resolver) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show success rate and top commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(resolve)
			if err != nil {
				return err
			}
			records, err := store.Recent(cmd.Context(), MaxHistoryAnalysisRecords)
			if err != nil {
				return fmt.Errorf("failed to retrieve history for analysis: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, MsgNoHistoryRecorded)
				return nil
			}
			displayHistoryStatistics(out, helpers.AnalyzeHistory(records))
			return nil
		},
	}
}

func historyStore(resolve Resolver) (ports.HistoryStore, error) {
	container, err := resolve()
	if err != nil {
		return nil, err
	}
	if container.HistoryStore == nil {
		return nil, errors.New(ErrHistoryStoreUnavailable)
	}
	return container.HistoryStore, nil
}

func printRecords(out io.Writer, records []domain.HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return
	}
	for _, rec := range records {
		status := "ok"
		if !rec.Success && rec.Kind != domain.TurnSuggested {
			status = "fail"
		}
		fmt.Fprintf(out, "%-16s | %-9s | %-4s | %s\n",
			humanize.Time(rec.Timestamp),
			rec.Kind,
			status,
			rec.Input)
	}
}

func displayHistoryStatistics(out io.Writer, stats helpers.HistoryStatistics) {
	fmt.Fprintf(out, "Entries analyzed: %s\n", humanize.Comma(int64(stats.Total)))
	fmt.Fprintf(out, "Commands: %d (success rate %.1f%%)\n",
		stats.Commands,
		helpers.CalculateSuccessRate(stats.Succeeded, stats.Commands))
	fmt.Fprintf(out, "Queries: %d, suggested commands: %d, rejected: %d\n",
		stats.Queries, stats.Suggested, stats.Rejected)
	if !stats.LastActive.IsZero() {
		fmt.Fprintf(out, "Last activity: %s\n", humanize.Time(stats.LastActive))
	}

	top := helpers.CalculateTopCommands(stats.Frequency, TopInputCount)
	if len(top) > 0 {
		fmt.Fprintln(out, "Top commands:")
		for _, stat := range top {
			fmt.Fprintf(out, "  %s (%d)\n", stat.Command, stat.Count)
		}
	}

	if len(stats.ByBackend) > 0 {
		fmt.Fprintln(out, "Queries by backend:")
		names := make([]string, 0, len(stats.ByBackend))
		for name := range stats.ByBackend {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %s: %d\n", name, stats.ByBackend[name])
		}
	}
}
