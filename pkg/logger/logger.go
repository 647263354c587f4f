package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus to provide structured, correlation-aware logging.
type Logger struct {
	entry *logrus.Entry
}

// Init configures the global logrus settings. It must be called once at
// process start before any Logger is created.
func Init(level logrus.Level) {
	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(level)
}

// ParseLevel converts a config string into a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}

// New creates a Logger pre-tagged with the service name.
func New(serviceName string) *Logger {
	return &Logger{
		entry: logrus.WithFields(logrus.Fields{
			"service_name": serviceName,
		}),
	}
}

// WithCorrelationID returns a Logger that tags every entry with the given
// correlation id. The receiver is not modified.
func (l *Logger) WithCorrelationID(correlationID string) *Logger {
	return &Logger{entry: l.entry.WithField("correlation_id", correlationID)}
}

// WithPayload returns a Logger carrying structured business data.
func (l *Logger) WithPayload(payload map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithField("payload", payload)}
}

// WithError returns a Logger carrying the error message.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

func (l *Logger) Info(message string) {
	l.entry.Info(message)
}

func (l *Logger) Warn(message string) {
	l.entry.Warn(message)
}

func (l *Logger) Error(message string) {
	l.entry.Error(message)
}

func (l *Logger) Debug(message string) {
	l.entry.Debug(message)
}

func (l *Logger) Fatal(message string) {
	l.entry.Fatal(message)
}
