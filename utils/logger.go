package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

var logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
	Level:      slog.LevelInfo,
	TimeFormat: time.Kitchen,
}))

// InitLogger configures the application logger. With an empty dir logs go to stderr
// through tint; otherwise they are appended to a daily file, logs/app-YYYY-MM-DD.log.
func InitLogger(level, dir string) (io.Closer, error) {
	lvl := parseLevel(level)
	if dir == "" {
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		}))
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	file := &dailyFile{dir: dir, now: time.Now}
	if err := file.rotate(file.now()); err != nil {
		return nil, err
	}

	logger = slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: lvl}))
	return file, nil
}

// dailyFile appends to app-YYYY-MM-DD.log in dir and switches files when the
// local date changes.
type dailyFile struct {
	mu   sync.Mutex
	dir  string
	now  func() time.Time
	day  string
	file *os.File
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if now := d.now(); now.Format("2006-01-02") != d.day {
		if err := d.rotate(now); err != nil {
			return 0, err
		}
	}
	return d.file.Write(p)
}

func (d *dailyFile) rotate(now time.Time) error {
	day := now.Format("2006-01-02")
	file, err := os.OpenFile(
		filepath.Join(d.dir, fmt.Sprintf("app-%s.log", day)),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if d.file != nil {
		d.file.Close()
	}
	d.file, d.day = file, day
	return nil
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	d.day = ""
	return err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Logger exposes the configured slog logger for structured call sites.
func Logger() *slog.Logger {
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogInfo logs an informational message
func LogInfo(format string, v ...interface{}) {
	logger.Info(fmt.Sprintf(format, v...))
}

// LogWarn logs a warning, used for security relevant events
func LogWarn(format string, v ...interface{}) {
	logger.Warn(fmt.Sprintf(format, v...))
}

// LogError logs an error message
func LogError(format string, v ...interface{}) {
	logger.Error(fmt.Sprintf(format, v...))
}

// LogDebug logs a debug message
func LogDebug(format string, v ...interface{}) {
	logger.Debug(fmt.Sprintf(format, v...))
}

// LogRequest logs HTTP request details
func LogRequest(method, path, ip, requestID string, status int, duration time.Duration) {
	logger.Info("request",
		"method", method,
		"path", path,
		"ip", ip,
		"status", status,
		"duration", duration,
		"request_id", requestID,
	)
}

// LogErrorWithStack logs an error with stack trace
func LogErrorWithStack(err error, stack []byte) {
	logger.Error(fmt.Sprintf("Error: %v", err), "stack", string(stack))
}
