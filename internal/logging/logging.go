// Package logging builds the zerolog logger shared across the issuer,
// holder, and verifier pipelines (spec.md §5 ambient stack), grounded on
// the zerolog construction the teacher repo uses for gnark's own verbose
// output (circuits/eth2_sc_update_test.go).
package logging

import (
	"io"
	"os"

	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

// New builds a logger writing structured JSON (or console output, for a
// human at a terminal) at level, timestamped, to w.
func New(level string, pretty bool, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// DisableGnark silences gnark's own global logger: this repo injects its
// own zerolog.Logger through every package instead of relying on gnark's
// process-wide singleton (spec.md §5 "loggers are constructed and passed
// explicitly, never a package-level global").
func DisableGnark() {
	logger.Disable()
}
