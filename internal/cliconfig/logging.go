package cliconfig

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/bft-labs/chanbench/internal/log"
)

// Logger returns a console logger at the given level, falling back to info
// for an unrecognised level.
func Logger(w io.Writer, level string) *log.ZerologAdapter {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return log.NewConsole(w, lvl)
}
