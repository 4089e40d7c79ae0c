// ABOUTME: Process-wide structured logger built on charmbracelet/log
// ABOUTME: Verbose mode lowers the level to debug; output is swappable for tests
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          "docqa",
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})
	return l
}

// L returns the shared logger
func L() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetOutput redirects log output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

// SetVerbose switches between debug and info level
func SetVerbose(v bool) {
	if v {
		L().SetLevel(log.DebugLevel)
		return
	}
	L().SetLevel(log.InfoLevel)
}

// SetQuiet only lets errors through
func SetQuiet() {
	L().SetLevel(log.ErrorLevel)
}

// Configure applies a level name (debug, info, warn, error) and a format name (text, json, logfmt)
func Configure(level, format string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	l := L()
	l.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		l.SetFormatter(log.TextFormatter)
	case "json":
		l.SetFormatter(log.JSONFormatter)
	case "logfmt":
		l.SetFormatter(log.LogfmtFormatter)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

func parseLevel(level string) (log.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// Debug logs a debug message with key/value pairs
func Debug(msg string, keyvals ...any) {
	L().Debug(msg, keyvals...)
}

// Info logs an informational message with key/value pairs
func Info(msg string, keyvals ...any) {
	L().Info(msg, keyvals...)
}

// Warn logs a warning with key/value pairs
func Warn(msg string, keyvals ...any) {
	L().Warn(msg, keyvals...)
}

// Error logs an error with key/value pairs
func Error(msg string, keyvals ...any) {
	L().Error(msg, keyvals...)
}
