// Package logger builds the logrus logger from configuration.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yorozuya-cybersecurity/zap-report/internal/config"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// New returns a logger configured by cfg. An unknown level falls back to info.
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		l.Warnf("invalid log level %q, using info", cfg.Level)
	}
	l.SetLevel(level)

	if err := setFormatter(l, cfg); err != nil {
		return nil, err
	}
	if err := setOutput(l, cfg); err != nil {
		return nil, err
	}
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setFormatter(l *logrus.Logger, cfg config.LogConfig) error {
	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		})
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Format)
	}
	return nil
}

func setOutput(l *logrus.Logger, cfg config.LogConfig) error {
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "stderr", "":
		l.SetOutput(os.Stderr)
	case "file":
		if cfg.FilePath == "" {
			return fmt.Errorf("file path is required when output is file")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		l.SetOutput(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize, // MB
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // days
			Compress:   cfg.Compress,
		})
	default:
		return fmt.Errorf("unsupported log output: %s", cfg.Output)
	}
	return nil
}
