// Package logger provides leveled logging to stderr. The level is set once
// at startup from configuration or the --verbose flag.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level controls which messages are emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu     sync.RWMutex
	level  Level     = LevelInfo
	output io.Writer = os.Stderr
)

// SetLevel sets the minimum emitted level.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetOutput sets the log writer. Defaults to os.Stderr; useful for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, tag, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l < level {
		return
	}
	fmt.Fprintf(output, tag+" "+format+"\n", args...)
}

// Debug prints a debug message.
func Debug(format string, args ...any) { logf(LevelDebug, "[DEBUG]", format, args...) }

// Info prints an informational message.
func Info(format string, args ...any) { logf(LevelInfo, "[INFO]", format, args...) }

// Warn prints a warning.
func Warn(format string, args ...any) { logf(LevelWarn, "[WARN]", format, args...) }

// Error prints an error message.
func Error(format string, args ...any) { logf(LevelError, "[ERROR]", format, args...) }
