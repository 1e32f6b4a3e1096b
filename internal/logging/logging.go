// =============================================================================
// File Processing Engine - Logging
// =============================================================================
//
// The engine logs through the small Logger interface below so that the core
// packages do not depend on a concrete logging library. The default
// implementation is backed by github.com/labstack/gommon/log.
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
)

// Logger is a leveled, printf-style logging sink.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Header is the line prefix used by the default logger.
const Header = "${time_rfc3339} ${level} ${prefix}"

// gommonLogger adapts a gommon logger to the Logger interface.
type gommonLogger struct {
	l *log.Logger
}

// New returns a Logger writing to w at the given level.
// Valid levels are "debug", "info", "warn" and "error".
func New(prefix, level string, w io.Writer) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}

	l := log.New(prefix)
	l.SetOutput(w)
	l.SetHeader(Header)
	l.SetLevel(lvl)

	return &gommonLogger{l: l}, nil
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	l := log.New("")
	l.SetOutput(io.Discard)
	l.SetLevel(log.OFF)
	return &gommonLogger{l: l}
}

// ParseLevel maps a level name to a gommon level.
func ParseLevel(level string) (log.Lvl, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	default:
		return log.OFF, fmt.Errorf("unknown log level %q", level)
	}
}

func (g *gommonLogger) Debug(msg string, args ...interface{}) { g.l.Debugf(msg, args...) }
func (g *gommonLogger) Info(msg string, args ...interface{})  { g.l.Infof(msg, args...) }
func (g *gommonLogger) Warn(msg string, args ...interface{})  { g.l.Warnf(msg, args...) }
func (g *gommonLogger) Error(msg string, args ...interface{}) { g.l.Errorf(msg, args...) }
