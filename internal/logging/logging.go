// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Viper keys read by Init when no options are given.
const (
	LevelKey   = "log.level"
	FormatKey  = "log.format"
	NoColorKey = "log.no_color"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Options struct {
	Level   string
	Format  string
	NoColor bool

	// Out defaults to stderr.
	Out io.Writer
}

// OptionsFromViper reads the logging flags bound by the root command.
func OptionsFromViper() *Options {
	return &Options{
		Level:   viper.GetString(LevelKey),
		Format:  viper.GetString(FormatKey),
		NoColor: viper.GetBool(NoColorKey),
	}
}

// InitDefault installs a console logger at info level. It is used until the
// flags have been parsed.
func InitDefault() {
	Init(&Options{Level: "info", Format: FormatConsole})
}

// Init configures the global logger. With nil options the values bound in viper are used.
// Unknown levels fall back to info.
func Init(opts *Options) {
	if opts == nil {
		opts = OptionsFromViper()
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var writer io.Writer = out
	if opts.Format != FormatJSON {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    opts.NoColor,
			TimeFormat: time.TimeOnly,
		}
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	// log.Ctx falls back to the global logger outside of requests
	zerolog.DefaultContextLogger = &log.Logger
}
