// Package logging configures the process-wide zerolog logger used by all
// mongocheck commands.
//
// Output goes to stderr in console format so that stdout stays reserved for
// command results (text or --json). The verbose flag on the root command
// switches the level between Info and Debug.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

// Init configures the global logger. It is called once from the root
// command's PersistentPreRun, before any subcommand executes.
func Init(verbose bool) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log = zerolog.New(output).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}

// Get returns the logger instance.
func Get() zerolog.Logger {
	return log
}
