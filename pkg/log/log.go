// Package log is a small wrapper around the standard library logger used by
// the docpane services (session, web, backend, index). It adds named loggers
// with a stable "[name>]" prefix, Warn/Debug levels and the ability to enable
// debug output globally or for a single service.
//
// Usage:
//
//	l := log.ForService("session")
//	l.Infof("query accepted: %q", q)
//	l.Debugf("raw backend payload: %s", body) // only with debug enabled
//
// The package name intentionally collides with the stdlib log package; alias
// one of them when both are needed in the same file.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// Level names used in emitted lines.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelDebug = "DEBUG"
)

// Logger is a named logger. Obtain instances through ForService.
type Logger struct {
	name string
	std  *log.Logger
}

// writerHolder wraps an io.Writer so atomic.Value always stores the same
// concrete type when the destination changes (file in production, buffer in
// tests).
type writerHolder struct {
	w io.Writer
}

var (
	globalDebug  atomic.Bool
	serviceDebug sync.Map     // map[string]*atomic.Bool
	loggers      sync.Map     // map[string]*Logger
	outputWriter atomic.Value // writerHolder
)

func init() {
	outputWriter.Store(writerHolder{w: os.Stderr})
}

// ForService returns (and memoizes) the logger for the given service name.
// Names should be stable slugs such as "web" or "session".
func ForService(name string) *Logger {
	if name == "" {
		name = "unknown"
	}
	if l, ok := loggers.Load(name); ok {
		return l.(*Logger)
	}
	current := outputWriter.Load().(writerHolder).w
	std := log.New(current, "", log.LstdFlags|log.Lmicroseconds)
	actual, _ := loggers.LoadOrStore(name, &Logger{name: name, std: std})
	return actual.(*Logger)
}

// SetGlobalDebug enables or disables debug logging for every service.
func SetGlobalDebug(enabled bool) {
	globalDebug.Store(enabled)
}

// EnableDebugFor enables debug logging for a single service.
func EnableDebugFor(name string) {
	if name == "" {
		return
	}
	val, _ := serviceDebug.LoadOrStore(name, &atomic.Bool{})
	val.(*atomic.Bool).Store(true)
}

// DisableDebugFor disables a previous per-service debug override.
func DisableDebugFor(name string) {
	if val, ok := serviceDebug.Load(name); ok {
		val.(*atomic.Bool).Store(false)
	}
}

// DebugEnabledFor reports whether debug output is active for the service,
// either globally or through a per-service override.
func DebugEnabledFor(name string) bool {
	if globalDebug.Load() {
		return true
	}
	if val, ok := serviceDebug.Load(name); ok {
		return val.(*atomic.Bool).Load()
	}
	return false
}

// SetOutput redirects all existing and future loggers to w.
func SetOutput(w io.Writer) {
	if w == nil {
		return
	}
	outputWriter.Store(writerHolder{w: w})
	loggers.Range(func(_, v any) bool {
		v.(*Logger).std.SetOutput(w)
		return true
	})
}

func (l *Logger) emit(level, msg string) {
	l.std.Println(level + " [" + l.name + ">] " + msg)
}

// Infof logs an informational message with fmt.Sprintf semantics.
func (l *Logger) Infof(format string, args ...any) {
	l.emit(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs a warning message.
func (l *Logger) Warnf(format string, args ...any) {
	l.emit(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs an error message.
func (l *Logger) Errorf(format string, args ...any) {
	l.emit(LevelError, fmt.Sprintf(format, args...))
}

// Debugf logs a debug message when debug is enabled for this service.
func (l *Logger) Debugf(format string, args ...any) {
	if !DebugEnabledFor(l.name) {
		return
	}
	l.emit(LevelDebug, fmt.Sprintf(format, args...))
}
