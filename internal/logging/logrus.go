package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/arloliu/assign/types"
)

// LogrusLogger implements types.Logger on top of a logrus entry.
type LogrusLogger struct {
	entry *logrus.Entry
}

// Compile-time assertion that LogrusLogger implements Logger.
var _ types.Logger = (*LogrusLogger)(nil)

// NewLogrus creates a logger that writes through the given logrus logger.
//
// Key-value pairs are converted to logrus fields. A trailing key without a
// value is logged under its own name with the value "<missing>".
//
// Parameters:
//   - logger: The logrus logger to wrap (logrus.StandardLogger() if nil)
//
// Returns:
//   - *LogrusLogger: A new logger instance
//
// Example:
//
//	l := logrus.New()
//	l.SetLevel(logrus.DebugLevel)
//	logger := NewLogrus(l)
//	logger.Info("replica placed", "collection", "books", "node", "n1")
func NewLogrus(logger *logrus.Logger) *LogrusLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &LogrusLogger{entry: logrus.NewEntry(logger)}
}

// Debug logs a debug-level message with optional key-value pairs.
func (l *LogrusLogger) Debug(msg string, keysAndValues ...any) {
	l.with(keysAndValues).Debug(msg)
}

// Info logs an info-level message with optional key-value pairs.
func (l *LogrusLogger) Info(msg string, keysAndValues ...any) {
	l.with(keysAndValues).Info(msg)
}

// Warn logs a warning-level message with optional key-value pairs.
func (l *LogrusLogger) Warn(msg string, keysAndValues ...any) {
	l.with(keysAndValues).Warn(msg)
}

// Error logs an error-level message with optional key-value pairs.
func (l *LogrusLogger) Error(msg string, keysAndValues ...any) {
	l.with(keysAndValues).Error(msg)
}

// Fatal logs a fatal-level message and exits through logrus.
func (l *LogrusLogger) Fatal(msg string, keysAndValues ...any) {
	l.with(keysAndValues).Fatal(msg)
}

func (l *LogrusLogger) with(keysAndValues []any) *logrus.Entry {
	if len(keysAndValues) == 0 {
		return l.entry
	}

	fields := make(logrus.Fields, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if i+1 < len(keysAndValues) {
			fields[key] = keysAndValues[i+1]
		} else {
			fields[key] = "<missing>"
		}
	}

	return l.entry.WithFields(fields)
}
