// Package logging builds the logrus logger used by long-running commands.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options selects level and format.
type Options struct {
	Level string
	JSON  bool
	Out   io.Writer
}

// New returns a logger configured from opts. Unknown levels fall back to info.
func New(opts Options) *logrus.Logger {
	log := logrus.New()
	if opts.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if opts.Out != nil {
		log.SetOutput(opts.Out)
	} else {
		log.SetOutput(os.Stderr)
	}
	return log
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// Component returns an entry tagged with the component name.
func Component(log logrus.FieldLogger, name string) *logrus.Entry {
	return log.WithFields(logrus.Fields{"component": name})
}

// LogError logs err with the operation that failed and optional data.
func LogError(log logrus.FieldLogger, component, op string, data any, err error) {
	fields := logrus.Fields{
		"component": component,
		"op":        op,
	}
	if data != nil {
		fields["data"] = data
	}
	log.WithFields(fields).Error(err.Error())
}
