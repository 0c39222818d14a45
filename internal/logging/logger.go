// Package logging adapts logrus to the cdm.Logger interface for the CLI.
package logging

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// Options controls the logger created by New.
type Options struct {
	// JSON selects the JSON formatter instead of text.
	JSON bool
	// Verbose enables debug messages.
	Verbose bool
	// Out receives log output.
	Out io.Writer
}

// Logger implements cdm.Logger on top of a logrus entry.
type Logger struct {
	entry *log.Entry
}

// New creates a logger writing to opts.Out.
func New(opts Options) *Logger {
	logger := log.New()

	if opts.JSON {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{
			FullTimestamp:    true,
			QuoteEmptyFields: true,
		})
	}

	logger.SetLevel(log.InfoLevel)
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if opts.Out != nil {
		logger.Out = opts.Out
	}

	return &Logger{entry: log.NewEntry(logger)}
}

// With returns a logger that adds fields to every message.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(msg)
}

func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Error(msg)
}
