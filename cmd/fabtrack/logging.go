package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpggio/fabtrack/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// newLogger builds a text logger writing to w and, when cfg.Path is set, to a
// rotating file as well. The closer flushes and closes the file.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, io.Closer) {
	var closer io.Closer = nopCloser{}
	if cfg.Path != "" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		file := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(w, file)
		closer = file
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}))
	return logger, closer
}

func parseLogLevel(level string) slog.Level {
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
