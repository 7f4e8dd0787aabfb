package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process-wide logger shared by the API and the warmup
// CLI. APP_ENV=dev (or development) switches to the human-readable console
// writer; any other value logs JSON for ingestion. Every line carries the
// service name so both binaries can be told apart in one stream.
func NewLogger(env string) zerolog.Logger {
	return newLogger(env, os.Stdout)
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	if env == "dev" || env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Str("service", "concierge").Logger()
}
