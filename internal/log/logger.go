// Package log provides the process-wide diagnostic logger.
//
// Diagnostics go to stderr so they never mix with a report printed on
// stdout. The default level is warn; --debug lowers it.
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger     zerolog.Logger
	loggerLock sync.RWMutex
)

func init() {
	logger = newLogger(os.Stderr, zerolog.WarnLevel)
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// SetOutput redirects diagnostics, keeping the current level.
func SetOutput(w io.Writer) {
	loggerLock.Lock()
	logger = newLogger(w, logger.GetLevel())
	loggerLock.Unlock()
}

// SetLevel sets the log level at runtime.
func SetLevel(levelStr string) {
	level := parseLogLevel(levelStr)
	loggerLock.Lock()
	logger = logger.Level(level)
	loggerLock.Unlock()
}

func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

func current() *zerolog.Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	l := logger
	return &l
}

// Debug starts a debug event.
func Debug() *zerolog.Event {
	return current().Debug()
}

// Info starts an info event.
func Info() *zerolog.Event {
	return current().Info()
}

// Warn starts a warning event.
func Warn() *zerolog.Event {
	return current().Warn()
}

// Error starts an error event.
func Error() *zerolog.Event {
	return current().Error()
}
