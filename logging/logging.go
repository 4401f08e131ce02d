package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global logger. Local runs get the console writer,
// everything else logs JSON to stdout.
func Setup(environment string) {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if environment == "" || environment == "local" {
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stdout
			w.TimeFormat = time.RFC3339
		})
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("env", environment).Logger()
	zerolog.DefaultContextLogger = &log.Logger
}
