// Package commands holds the management subcommands: history, config and
// version. They read the wired container through a Resolver because the
// container is only built once the root flags are parsed.
package commands

import "github.com/doeshing/aicmd-go/internal/app"

// Resolver returns the container built for this invocation.
type Resolver func() (*app.Container, error)

// ErrHistoryStoreUnavailable is reported when history is disabled.
const ErrHistoryStoreUnavailable = "history store unavailable (is history.enabled false?)"

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No history recorded yet."
	MsgHistoryCleared           = "History cleared."
)

// MaxHistoryAnalysisRecords bounds how many records `history stats` reads.
const MaxHistoryAnalysisRecords = 1000

// TopInputCount is how many frequent commands `history stats` lists.
const TopInputCount = 5
