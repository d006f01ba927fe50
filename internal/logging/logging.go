package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options configures the application logger.
type Options struct {
	Level  string // debug|info|warn|error
	Format string // text|json
	File   string // optional log file; empty means stdout only
}

// New builds a logrus logger from the given options.
func New(opts Options) *logrus.Logger {
	l := logrus.New()

	switch opts.Level {
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	if opts.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			l.Warnf("log file %s unavailable, logging to stdout: %v", opts.File, err)
		} else {
			l.SetOutput(io.MultiWriter(file, os.Stdout))
		}
	}

	return l
}
