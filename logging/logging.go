// Package logging provides a level-gated logger in the teacher's
// timestamp-prefixed log.Printf idiom, driven by an env var instead of
// compile-time bools.
package logging

import (
	"log"
	"os"
	"strings"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelOff disables all output.
	LevelOff
)

func parseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "off", "none":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Logger is a minimal level-gated logger. The zero value logs at Debug.
type Logger struct {
	prefix string
	level  Level
}

// New creates a Logger tagged with prefix (typically a component name),
// reading its level from LOG_LEVEL (debug|info|warn|error|off, default info).
func New(prefix string) *Logger {
	return &Logger{prefix: prefix, level: parseLevel(os.Getenv("LOG_LEVEL"))}
}

func (l *Logger) logf(lvl Level, tag string, format string, a ...interface{}) {
	if lvl < l.level {
		return
	}
	log.Printf(time.Now().Format("15:04:05.000")+" ["+tag+"] "+l.prefix+": "+format, a...)
}

func (l *Logger) Debugf(format string, a ...interface{}) { l.logf(LevelDebug, "DEBUG", format, a...) }
func (l *Logger) Infof(format string, a ...interface{})  { l.logf(LevelInfo, "INFO", format, a...) }
func (l *Logger) Warnf(format string, a ...interface{})  { l.logf(LevelWarn, "WARN", format, a...) }
func (l *Logger) Errorf(format string, a ...interface{}) { l.logf(LevelError, "ERROR", format, a...) }
