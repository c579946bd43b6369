// Package helpers holds formatting and aggregation used by the management
// commands.
package helpers

import (
	"sort"
	"time"

	"github.com/doeshing/aicmd-go/internal/domain"
)

// CommandStatistic represents usage statistics for an input line
type CommandStatistic struct {
	Command string
	Count   int
}

// HistoryStatistics summarizes a slice of history records.
type HistoryStatistics struct {
	Total      int
	Commands   int
	Succeeded  int
	Queries    int
	Suggested  int
	Rejected   int
	ByBackend  map[string]int
	Frequency  map[string]int
	LastActive time.Time
}

// AnalyzeHistory counts records by kind. Only executed commands feed the
// success rate and the frequency table.
func AnalyzeHistory(records []domain.HistoryRecord) HistoryStatistics {
	stats := HistoryStatistics{
		Total:     len(records),
		ByBackend: make(map[string]int),
		Frequency: make(map[string]int),
	}
	for _, rec := range records {
		if rec.Timestamp.After(stats.LastActive) {
			stats.LastActive = rec.Timestamp
		}
		switch rec.Kind {
		case domain.TurnCommand:
			stats.Commands++
			stats.Frequency[rec.Input]++
			if rec.Success {
				stats.Succeeded++
			}
		case domain.TurnQuery:
			stats.Queries++
		case domain.TurnSuggested:
			stats.Suggested++
		case domain.TurnRejected:
			stats.Rejected++
		}
		if rec.Backend != "" && rec.Kind == domain.TurnQuery {
			stats.ByBackend[rec.Backend]++
		}
	}
	return stats
}

// CalculateTopCommands returns the top N most frequently used commands
// If limit is 0 or negative, returns all commands
func CalculateTopCommands(commandFrequency map[string]int, limit int) []CommandStatistic {
	stats := make([]CommandStatistic, 0, len(commandFrequency))
	for cmd, count := range commandFrequency {
		stats = append(stats, CommandStatistic{Command: cmd, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count == stats[j].Count {
			return stats[i].Command < stats[j].Command
		}
		return stats[i].Count > stats[j].Count
	})

	if limit > 0 && len(stats) > limit {
		return stats[:limit]
	}
	return stats
}

// CalculateSuccessRate calculates the success rate as a percentage
func CalculateSuccessRate(successfulCount int, executedCount int) float64 {
	if executedCount == 0 {
		return 0.0
	}
	return float64(successfulCount) / float64(executedCount) * 100.0
}
