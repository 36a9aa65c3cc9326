// Package log wraps the standard library logger with named per-service
// loggers and four levels.
//
//	l := log.ForService("tracks")
//	l.Infof("loaded %d tracks", n)
//	l.Debugf("raw gpx: %d bytes", len(b)) // only with debug enabled
//
// Every line carries the service prefix "[name>]". Debug output can be enabled
// globally (SetGlobalDebug) or per service (EnableDebugFor).
//
// The package name collides with the standard library; alias one of them when
// both are needed.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// Level names printed in front of each message.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelDebug = "DEBUG"
)

// Logger is a named logger. Obtain one with ForService.
type Logger struct {
	name string
	std  *log.Logger
}

// writerHolder keeps atomic.Value storing a single concrete type.
type writerHolder struct {
	w io.Writer
}

var (
	globalDebug  atomic.Bool
	serviceDebug sync.Map // map[string]*atomic.Bool
	loggers      sync.Map // map[string]*Logger
	output       atomic.Value
)

func init() {
	output.Store(writerHolder{w: os.Stderr})
}

// ForService returns the memoized logger for name.
func ForService(name string) *Logger {
	if name == "" {
		name = "triplog"
	}
	if l, ok := loggers.Load(name); ok {
		return l.(*Logger)
	}
	w := output.Load().(writerHolder).w
	l := &Logger{name: name, std: log.New(w, "", log.LstdFlags)}
	actual, _ := loggers.LoadOrStore(name, l)
	return actual.(*Logger)
}

// SetGlobalDebug enables or disables debug output for every service.
func SetGlobalDebug(enabled bool) {
	globalDebug.Store(enabled)
}

// EnableDebugFor enables debug output for a single service.
func EnableDebugFor(name string) {
	v, _ := serviceDebug.LoadOrStore(name, &atomic.Bool{})
	v.(*atomic.Bool).Store(true)
}

// DisableDebugFor turns per-service debug output off again.
func DisableDebugFor(name string) {
	if v, ok := serviceDebug.Load(name); ok {
		v.(*atomic.Bool).Store(false)
	}
}

// DebugEnabledFor reports whether debug lines for name are printed.
func DebugEnabledFor(name string) bool {
	if globalDebug.Load() {
		return true
	}
	if v, ok := serviceDebug.Load(name); ok {
		return v.(*atomic.Bool).Load()
	}
	return false
}

// SetOutput redirects all loggers, existing and future, to w.
func SetOutput(w io.Writer) {
	if w == nil {
		return
	}
	output.Store(writerHolder{w: w})
	loggers.Range(func(_, v any) bool {
		v.(*Logger).std.SetOutput(w)
		return true
	})
}

func (l *Logger) emit(level, format string, args ...any) {
	l.std.Printf("%s [%s>] %s", level, l.name, fmt.Sprintf(format, args...))
}

// Infof logs at INFO.
func (l *Logger) Infof(format string, args ...any) {
	l.emit(LevelInfo, format, args...)
}

// Warnf logs at WARN.
func (l *Logger) Warnf(format string, args ...any) {
	l.emit(LevelWarn, format, args...)
}

// Errorf logs at ERROR.
func (l *Logger) Errorf(format string, args ...any) {
	l.emit(LevelError, format, args...)
}

// Debugf logs at DEBUG when debug is enabled for this logger's service.
func (l *Logger) Debugf(format string, args ...any) {
	if !DebugEnabledFor(l.name) {
		return
	}
	l.emit(LevelDebug, format, args...)
}

// Fatalf logs at ERROR and exits with status 1.
func (l *Logger) Fatalf(format string, args ...any) {
	l.emit(LevelError, format, args...)
	os.Exit(1)
}
