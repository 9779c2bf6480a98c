package logger

import (
	"io"
	"os"
	"path/filepath"
	"workspace-core-svc/src/internal/config"

	"github.com/sirupsen/logrus"
)

// Init configures the standard logrus logger from application config
func Init(cfg *config.Configuration) {
	level, err := logrus.ParseLevel(cfg.Logs.Level)
	if err != nil {
		level = logrus.InfoLevel
		logrus.WithField("level", cfg.Logs.Level).Warn("Unknown log level, falling back to info")
	}
	logrus.SetLevel(level)

	if cfg.Logs.EnableJSONOutput {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	if cfg.Logs.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logs.Path), 0o755); err != nil {
			logrus.WithError(err).Warn("Failed to create log directory, logging to stdout only")
			return
		}
		file, err := os.OpenFile(cfg.Logs.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logrus.WithError(err).Warn("Failed to open log file, logging to stdout only")
			return
		}
		logrus.SetOutput(io.MultiWriter(os.Stdout, file))
	}
}
