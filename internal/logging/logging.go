// Package logging builds the structured logger shared by the CLI and TUI.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

func parseLevel(raw string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q", raw)
	}
}

func parseFormat(raw string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "text", "":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("unknown log format %q", raw)
	}
}

// New returns a logger writing to w at the given level and format
// (text, json or logfmt).
func New(level, format string, w io.Writer) (*log.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	f, err := parseFormat(format)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       f,
		Prefix:          "trebsim",
		ReportTimestamp: f != log.TextFormatter,
	}), nil
}
