package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	File   string // optional rotating log file, in addition to stdout
	App    string
}

// Init builds the process-wide logger and installs it as zerolog's global log.Logger.
func Init(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	logger := zerolog.New(Writer(cfg)).
		With().
		Timestamp().
		Str("app", appName(cfg.App)).
		Logger()

	log.Logger = logger
	return logger
}

// Writer returns the sink described by cfg: stdout (console or json) and,
// when File is set, a size-rotated file.
func Writer(cfg Config) io.Writer {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if cfg.File == "" {
		return out
	}
	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	return zerolog.MultiLevelWriter(out, rotating)
}

func appName(name string) string {
	if name == "" {
		return "greenia"
	}
	return name
}
