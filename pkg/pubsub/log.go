package pubsub

import (
	"context"

	"distress-server/pkg/logger"
)

// LogPublisher records publishes in the log. Used when no broker is configured.
type LogPublisher struct {
	logger *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log}
}

func (l *LogPublisher) Name() string {
	return "log"
}

func (l *LogPublisher) Publish(ctx context.Context, topic string, message []byte) error {
	l.logger.WithContext(ctx).WithFields(logger.Fields{
		"topic":   topic,
		"payload": string(message),
	}).Info("Publish suppressed by log publisher")
	return nil
}

func (l *LogPublisher) Close() error {
	return nil
}
