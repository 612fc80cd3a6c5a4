/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

// Package logging is the structured-logging wrapper shared by every
// package in this module, scaled down from the teacher's logrus-based
// Logger interface to the handful of levels and fields this module's
// servers and clients actually emit.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields carries structured key/value context attached to a log entry.
type Fields map[string]interface{}

// Logger is the structured logging surface used throughout this module.
type Logger interface {
	Debug(message string, fields Fields)
	Info(message string, fields Fields)
	Warning(message string, fields Fields)
	Error(message string, fields Fields)

	// WithFields returns a Logger that merges field into every entry
	// it logs, in addition to whatever is passed at the call site.
	WithFields(field Fields) Logger

	// SetOutput redirects where formatted entries are written.
	SetOutput(w io.Writer)

	// SetLevel changes the minimum severity that is emitted.
	SetLevel(level string)
}

type logger struct {
	entry *logrus.Entry
}

// New returns a Logger writing JSON-formatted entries to stderr at
// info level, matching the teacher's default logger construction.
func New() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return &logger{entry: logrus.NewEntry(l)}
}

func (l *logger) log(level logrus.Level, message string, fields Fields) {
	if fields == nil {
		l.entry.Log(level, message)
		return
	}
	l.entry.WithFields(logrus.Fields(fields)).Log(level, message)
}

func (l *logger) Debug(message string, fields Fields)   { l.log(logrus.DebugLevel, message, fields) }
func (l *logger) Info(message string, fields Fields)    { l.log(logrus.InfoLevel, message, fields) }
func (l *logger) Warning(message string, fields Fields) { l.log(logrus.WarnLevel, message, fields) }
func (l *logger) Error(message string, fields Fields)   { l.log(logrus.ErrorLevel, message, fields) }

func (l *logger) WithFields(field Fields) Logger {
	return &logger{entry: l.entry.WithFields(logrus.Fields(field))}
}

func (l *logger) SetOutput(w io.Writer) {
	l.entry.Logger.SetOutput(w)
}

func (l *logger) SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.entry.Logger.SetLevel(lvl)
}

// Discard returns a Logger whose output is suppressed, used by tests
// and by components that were not given an explicit logger.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &logger{entry: logrus.NewEntry(l)}
}
