package logger

import (
	"io"
	"os"
	"path/filepath"

	"chatwarden/internal/botconfig"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Log zerolog.Logger

// Module sub-loggers
var (
	Risk    zerolog.Logger
	Spam    zerolog.Logger
	Filter  zerolog.Logger
	Alert   zerolog.Logger
	Event   zerolog.Logger
	Monitor zerolog.Logger
	Config  zerolog.Logger
	DB      zerolog.Logger
)

func Init(cfg botconfig.LogConfig) {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var writer io.Writer

	if cfg.Mode == "debug" {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			writer = os.Stderr
		} else {
			lj := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   cfg.Compress,
			}
			writer = lj
		}
	}

	Log = zerolog.New(writer).With().Timestamp().Caller().Logger()

	Risk = Log.With().Str("module", "risk").Logger()
	Spam = Log.With().Str("module", "spam").Logger()
	Filter = Log.With().Str("module", "filter").Logger()
	Alert = Log.With().Str("module", "alert").Logger()
	Event = Log.With().Str("module", "event").Logger()
	Monitor = Log.With().Str("module", "monitor").Logger()
	Config = Log.With().Str("module", "config").Logger()
	DB = Log.With().Str("module", "database").Logger()
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
