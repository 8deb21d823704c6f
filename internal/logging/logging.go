package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const defaultLogFile = "multiview.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile

	level  = new(slog.LevelVar)
	logger = slog.New(slog.NewTextHandler(fileWriter{}, &slog.HandlerOptions{Level: level}))
)

// fileWriter appends each record to the current log path. The file is
// reopened per write so Configure can move the destination at runtime.
type fileWriter struct{}

func (fileWriter) Write(p []byte) (int, error) {
	mu.Lock()
	path := logPath
	mu.Unlock()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
		return 0, err
	}
	defer f.Close()
	return f.Write(p)
}

// Logger returns the process-wide structured logger.
func Logger() *slog.Logger {
	return logger
}

// Error writes err at error level. Nil errors are ignored.
func Error(err error, args ...any) {
	if err == nil {
		return
	}
	logger.Error(err.Error(), args...)
}

// Warn logs msg at warn level.
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Info logs msg at info level.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Debug logs msg at debug level.
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Enabled reports whether records at lvl are currently written.
func Enabled(lvl slog.Level) bool {
	return logger.Enabled(context.Background(), lvl)
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Unknown values fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the minimum level written to the log.
func SetLevel(name string) {
	level.Set(ParseLevel(name))
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// TraceEnabled reports whether Trace currently writes entries.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Trace appends a structured JSON entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	if !TraceEnabled() {
		return
	}

	entry := struct {
		Time    time.Time   `json:"time"`
		Event   string      `json:"event"`
		Payload interface{} `json:"payload,omitempty"`
	}{
		Time:    time.Now().UTC(),
		Event:   event,
		Payload: payload,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace encoding failed: %v\n", err)
		return
	}
	data = append(data, '\n')
	if _, err := (fileWriter{}).Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "trace logging failed: %v\n", err)
	}
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}

// Path returns the current log destination.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}
