package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LogrusAdapter implements Logger on top of logrus.
type LogrusAdapter struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// NewLogrusAdapter creates a logger for the given level ("debug", "info",
// "warn", "error") and format ("json" or "text").
func NewLogrusAdapter(level, format string) *LogrusAdapter {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &LogrusAdapter{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

// SetOutput redirects log output.
func (l *LogrusAdapter) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

func (l *LogrusAdapter) Debug(msg string, fields ...Field) { l.log(logrus.DebugLevel, msg, fields) }
func (l *LogrusAdapter) Info(msg string, fields ...Field)  { l.log(logrus.InfoLevel, msg, fields) }
func (l *LogrusAdapter) Warn(msg string, fields ...Field)  { l.log(logrus.WarnLevel, msg, fields) }
func (l *LogrusAdapter) Error(msg string, fields ...Field) { l.log(logrus.ErrorLevel, msg, fields) }

func (l *LogrusAdapter) log(level logrus.Level, msg string, fields []Field) {
	if len(fields) == 0 {
		l.entry.Log(level, msg)
		return
	}
	l.entry.WithFields(convertFields(fields)).Log(level, msg)
}

func (l *LogrusAdapter) WithError(err error) Logger {
	return l.derive(l.entry.WithError(err))
}

func (l *LogrusAdapter) WithField(key string, value interface{}) Logger {
	return l.derive(l.entry.WithField(key, value))
}

func (l *LogrusAdapter) WithFields(fields ...Field) Logger {
	return l.derive(l.entry.WithFields(convertFields(fields)))
}

// derive shares the underlying logger so SetOutput on the root applies to
// every child.
func (l *LogrusAdapter) derive(entry *logrus.Entry) Logger {
	return &LogrusAdapter{logger: l.logger, entry: entry}
}

func convertFields(fields []Field) logrus.Fields {
	logrusFields := make(logrus.Fields, len(fields))
	for _, field := range fields {
		logrusFields[field.Key] = field.Value
	}
	return logrusFields
}
