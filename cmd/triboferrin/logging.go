package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"

	"github.com/triboferrin/triboferrin/config"
)

// LevelTrace sits below slog.LevelDebug; the resolver accepts "trace"
// as a log level but slog has no name for it.
const LevelTrace = slog.Level(-8)

// logDirectiveVar overrides the resolved level when set, so the logging
// subsystem can be tuned without touching the configuration sources.
const logDirectiveVar = "TRIBOFERRIN_LOG"

func setupLogging(cfg *config.Config) {
	level := effectiveLevel(cfg)

	h := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		AddSource:  level <= LevelTrace,
		TimeFormat: "15:04:05.000",
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRC")
				}
			}
			return a
		},
	})

	slog.SetDefault(slog.New(h))

	log.SetFlags(0)
	log.SetOutput(
		slog.NewLogLogger(
			slog.Default().Handler(),
			slog.LevelInfo,
		).Writer(),
	)
}

// effectiveLevel maps the resolved config onto a slog level. Verbose
// raises the level to at least debug; the TRIBOFERRIN_LOG directive,
// when set, wins outright.
func effectiveLevel(cfg *config.Config) slog.Level {
	level := slog.LevelInfo
	if cfg != nil {
		level = parseLevel(cfg.LogLevel)
		if cfg.Verbose && level > slog.LevelDebug {
			level = slog.LevelDebug
		}
	}
	if directive := os.Getenv(logDirectiveVar); directive != "" {
		level = parseLevel(directive)
	}
	return level
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
