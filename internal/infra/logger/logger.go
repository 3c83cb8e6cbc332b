package logger

import (
	"io"
	"os"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/rs/zerolog"
)

// New builds the process logger. debug and development get a console writer, everything else json.
// Extra writers (the kafka sink) receive the json form of every entry.
func New(moduler string, env string, extra ...io.Writer) zerolog.Logger {
	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	switch constants.ENV(env) {
	case constants.Debug, constants.Dev:
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}

	writers := make([]io.Writer, 0, len(extra)+1)
	writers = append(writers, out)
	for _, w := range extra {
		if w != nil {
			writers = append(writers, w)
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("moduler", moduler).
		Logger()
}
