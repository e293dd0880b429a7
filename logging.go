package madness

import (
	"os"

	"github.com/rs/zerolog"
)

// logger is the package-wide structured logger. The default writes to
// stderr at warn level, so a correctly used substrate is silent; affinity
// problems, task panics and misconfiguration still surface.
var logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)

// SetLogger replaces the package logger. Call during single-threaded
// initialization, before Begin.
func SetLogger(l zerolog.Logger) {
	logger = l
}
