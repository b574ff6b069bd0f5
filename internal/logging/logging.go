// Package logging builds the zerolog loggers handed to every component.
//
// Components never reach for a global logger: the host builds one logger at
// startup and passes it down, and each component tags its lines with a
// component field:
//
//	logger := logging.New(logging.Config{Level: "info", Format: "console"})
//	registry := application.NewRegistry(ctx, repo, application.RegistryDeps{Logger: logger})
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string

	// Format is json (for log sinks) or console (for terminals).
	Format string

	// Output defaults to os.Stderr.
	Output io.Writer
}

func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: FormatJSON,
		Output: os.Stderr,
	}
}

func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = cfg.Output
	if strings.EqualFold(cfg.Format, FormatConsole) {
		out = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(cfg.Output),
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
