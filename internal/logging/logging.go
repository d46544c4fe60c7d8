// Package logging provides the leveled, structured logger used across the
// shell. Output goes to stderr by default so it never interleaves with
// rendered results; a file target can be attached for debugging sessions.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelNone disables all output.
	LevelNone
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel reads a level name; unknown names fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "NONE", "OFF":
		return LevelNone
	default:
		return LevelInfo
	}
}

// Format selects the output encoding.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Fields carries structured context on a log entry.
type Fields map[string]any

type entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Fields    Fields    `json:"fields,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Options configures a Logger.
type Options struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Logger writes leveled entries to one writer. Safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	level  Level
	format Format
	output io.Writer
}

// DefaultLogger is the package-level logger the shell uses.
var DefaultLogger = New(Options{Level: LevelInfo, Format: FormatText, Output: os.Stderr})

// New creates a Logger.
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	return &Logger{level: opts.Level, format: opts.Format, output: opts.Output}
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput redirects the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// SetFormat changes the encoding.
func (l *Logger) SetFormat(format Format) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
}

func (l *Logger) Debug(msg string, fields ...Fields) { l.log(LevelDebug, msg, nil, fields...) }
func (l *Logger) Info(msg string, fields ...Fields)  { l.log(LevelInfo, msg, nil, fields...) }
func (l *Logger) Warn(msg string, fields ...Fields)  { l.log(LevelWarn, msg, nil, fields...) }

// Error logs a message with an attached error.
func (l *Logger) Error(msg string, err error, fields ...Fields) {
	l.log(LevelError, msg, err, fields...)
}

func (l *Logger) log(level Level, msg string, err error, fields ...Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	e := entry{Timestamp: time.Now(), Level: level.String(), Message: msg}
	if len(fields) > 0 {
		merged := make(Fields)
		for _, f := range fields {
			for k, v := range f {
				merged[k] = v
			}
		}
		e.Fields = merged
	}
	if err != nil {
		e.Error = err.Error()
	}

	if l.format == FormatJSON {
		data, merr := json.Marshal(e)
		if merr != nil {
			fmt.Fprintf(l.output, `{"error":"failed to marshal log entry: %s"}`+"\n", merr)
			return
		}
		fmt.Fprintln(l.output, string(data))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s: %s", e.Timestamp.Format("2006-01-02 15:04:05.000"), e.Level, e.Message)
	if e.Error != "" {
		fmt.Fprintf(&sb, " error=%q", e.Error)
	}
	for k, v := range e.Fields {
		fmt.Fprintf(&sb, " %s=%v", k, v)
	}
	fmt.Fprintln(l.output, sb.String())
}

// Package-level helpers over DefaultLogger.

func Debug(msg string, fields ...Fields) { DefaultLogger.Debug(msg, fields...) }
func Info(msg string, fields ...Fields)  { DefaultLogger.Info(msg, fields...) }
func Warn(msg string, fields ...Fields)  { DefaultLogger.Warn(msg, fields...) }

func Error(msg string, err error, fields ...Fields) { DefaultLogger.Error(msg, err, fields...) }

// SetLevel sets the default logger's level.
func SetLevel(level Level) { DefaultLogger.SetLevel(level) }

// EnableFile redirects the default logger to an append-only file, creating
// parent directories as needed. Used when LAKE_LOG_FILE is set so debug
// output survives the session without cluttering the terminal.
func EnableFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	DefaultLogger.SetOutput(f)
	DefaultLogger.SetFormat(FormatJSON)
	return nil
}
