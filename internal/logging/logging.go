// Package logging configures the zerolog logger used by every command.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	LogLevelKey   = "log.level"
	LogFormatKey  = "log.format"
	LogNoColorKey = "log.no_color"
)

// Settings are the log.* configuration values.
type Settings struct {
	Level   string
	Format  string
	NoColor bool
}

// SettingsFromConfig reads Settings from viper.
func SettingsFromConfig() Settings {
	return Settings{
		Level:   strings.ToLower(strings.TrimSpace(viper.GetString(LogLevelKey))),
		Format:  strings.ToLower(strings.TrimSpace(viper.GetString(LogFormatKey))),
		NoColor: viper.GetBool(LogNoColorKey),
	}
}

// New builds a logger writing to output. Values it cannot honour fall back to
// info level and console output, and are reported in warnings.
func New(output io.Writer, s Settings) (zerolog.Logger, zerolog.Level, []string) {
	var warnings []string

	level, err := zerolog.ParseLevel(s.Level)
	if err != nil || s.Level == "" {
		level = zerolog.InfoLevel
		warnings = append(warnings, fmt.Sprintf("invalid log level %q, using info", s.Level))
	}

	switch s.Format {
	case "json":
	case "console":
		output = consoleWriter(output, s.NoColor)
	default:
		warnings = append(warnings, fmt.Sprintf("unknown log format %q, using console", s.Format))
		output = consoleWriter(output, s.NoColor)
	}

	return zerolog.New(output).With().Timestamp().Logger(), level, warnings
}

func consoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = out
		w.NoColor = noColor
		w.TimeFormat = "15:04:05.000"
	})
}

// Init installs the configured logger as the global logger, writing to stderr.
func Init() {
	InitWithOutput(os.Stderr)
}

// InitWithOutput installs the configured logger as the global logger and then
// logs any warnings about the configuration through it.
func InitWithOutput(output io.Writer) {
	logger, level, warnings := New(output, SettingsFromConfig())
	zerolog.SetGlobalLevel(level)
	log.Logger = logger

	for _, msg := range warnings {
		log.Warn().Msg(msg)
	}
}
