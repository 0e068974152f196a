// Package logx configures the process-wide zerolog logger. Logs always go to
// stderr: the console host owns stdout for the conversation transcript.
package logx

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Level        string `split_words:"true" default:"info"`
	PrettyFormat bool   `split_words:"true" default:"false"`
}

var DefaultConfig = &Config{
	Level:        "info",
	PrettyFormat: false,
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

func Init(opts ...Config) {
	conf := safe(opts...)

	var out = zerolog.New(os.Stderr)
	if conf.PrettyFormat {
		writer := zerolog.NewConsoleWriter()
		writer.Out = os.Stderr
		out = zerolog.New(writer)
	}

	log.Logger = out.Level(parseLevel(conf.Level)).
		With().Timestamp().Caller().Stack().Logger()
}

// parseLevel maps a config string to a zerolog level, defaulting to info so a
// typo never silences the logger.
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
