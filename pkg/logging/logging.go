// Package logging installs the process-wide slog default.
//
// Output goes to stderr through tint. The level is read from LOG_LEVEL
// (debug, info, warn, error); anything else means info. Colors honor the
// NO_COLOR convention.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Setup replaces the default slog logger. Call it once, first thing in main.
func Setup() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		level = slog.LevelInfo
	}

	_, noColor := os.LookupEnv("NO_COLOR")
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Error values render as plain strings, not struct dumps.
			if err, ok := a.Value.Any().(error); ok && len(groups) == 0 {
				a.Value = slog.StringValue(err.Error())
			}
			return a
		},
	})))
}
