package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// LogrusAdapter routes watermill's internal logs into logrus.
type LogrusAdapter struct {
	entry *logrus.Entry
}

func NewLogrusAdapter(entry *logrus.Entry) *LogrusAdapter {
	return &LogrusAdapter{entry: entry.WithField("component", "watermill")}
}

func (l *LogrusAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).WithError(err).Error(msg)
}

func (l *LogrusAdapter) Info(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *LogrusAdapter) Debug(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *LogrusAdapter) Trace(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (l *LogrusAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &LogrusAdapter{entry: l.entry.WithFields(logrus.Fields(fields))}
}
