package config

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global zerolog logger. format "json" writes
// structured lines; anything else uses the console writer.
func SetupLogging(level, format string) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if strings.EqualFold(format, "json") {
		out = os.Stderr
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "traffic-image-server").Logger()
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
