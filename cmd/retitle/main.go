package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/retitle/internal/batch"
)

// exitInterrupted is the exit status after a forced second interrupt.
const exitInterrupted = 130

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Per-note failures are reported in the summary and exit 0; only
	// configuration and argument errors reach here.
	if err := newRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints a command error once. Configuration errors found by a
// run were already shown as a notice.
func reportError(w io.Writer, err error) {
	if errors.Is(err, batch.ErrConfiguration) {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}
