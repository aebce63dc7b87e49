// Package logger builds the application's zap logger.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/iliyamo/tent-booking/internal/config"
)

// New creates a logger from cfg.  With Output "file" entries go to a
// size-rotated file; anything else writes to stdout.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var out zapcore.WriteSyncer
	if cfg.Output == "file" {
		w, err := RotatingFile(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays, cfg.Compress)
		if err != nil {
			return nil, err
		}
		out = zapcore.AddSync(w)
	} else {
		out = zapcore.AddSync(os.Stdout)
	}
	return newWithSyncer(cfg, out), nil
}

func newWithSyncer(cfg config.LogConfig, out zapcore.WriteSyncer) *zap.Logger {
	core := zapcore.NewCore(encoder(cfg.Format), out, level(cfg.Level))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// RotatingFile returns a lumberjack writer for path, creating the
// directory if needed.  Zero limits fall back to 100MB, 3 backups, 7 days.
func RotatingFile(path string, maxSizeMB, maxBackups, maxAgeDays int, compress bool) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 100
	}
	if maxBackups <= 0 {
		maxBackups = 3
	}
	if maxAgeDays <= 0 {
		maxAgeDays = 7
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		LocalTime:  true,
		Compress:   compress,
	}, nil
}

func encoder(format string) zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if strings.EqualFold(format, "console") {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

// level maps a level name to zap; unknown names mean info.
func level(name string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
