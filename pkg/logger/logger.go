// Package logger is the leveled logging facade used across the client.
//
// It wraps a single standard library *log.Logger so that every package logs
// through the same writer, flags and threshold. Callers use the printf-style
// helpers; nothing in this package allocates when a level is disabled.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level is the verbosity threshold used by the logger.
//
// Lower values are more verbose.
type Level int32

const (
	// LevelTrace enables extremely verbose logs (wire events, loop inputs).
	LevelTrace Level = iota
	// LevelDebug enables verbose logs intended for debugging.
	LevelDebug
	// LevelInfo enables informational logs (default).
	LevelInfo
	// LevelWarn enables only warnings and errors.
	LevelWarn
	// LevelError enables only error logs.
	LevelError
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int32(l))
	}
}

var (
	std       = log.New(os.Stderr, "", log.LstdFlags)
	threshold atomic.Int32
)

func init() {
	threshold.Store(int32(LevelInfo))
}

// ParseLevel parses a log level string into a Level.
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}

// SetOutput replaces the writer used by the global logger.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetFlags sets the underlying log flags used for all output.
func SetFlags(flags int) {
	std.SetFlags(flags)
}

// SetLevel sets the global log level threshold.
func SetLevel(level Level) {
	threshold.Store(int32(level))
}

// CurrentLevel returns the active threshold.
func CurrentLevel() Level {
	return Level(threshold.Load())
}

// Enabled reports whether a level would be emitted by the current configuration.
func Enabled(level Level) bool {
	return level >= CurrentLevel()
}

// Tracef logs at TRACE level.
func Tracef(format string, args ...any) { logf(LevelTrace, "TRACE", format, args...) }

// Debugf logs at DEBUG level.
func Debugf(format string, args ...any) { logf(LevelDebug, "DEBUG", format, args...) }

// Infof logs at INFO level.
func Infof(format string, args ...any) { logf(LevelInfo, "INFO", format, args...) }

// Warnf logs at WARN level.
func Warnf(format string, args ...any) { logf(LevelWarn, "WARN", format, args...) }

// Errorf logs at ERROR level.
func Errorf(format string, args ...any) { logf(LevelError, "ERROR", format, args...) }

func logf(level Level, tag string, format string, args ...any) {
	if !Enabled(level) {
		return
	}
	_ = std.Output(3, "["+tag+"] "+fmt.Sprintf(format, args...))
}
