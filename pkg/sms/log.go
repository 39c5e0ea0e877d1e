package sms

import (
	"context"

	"distress-server/pkg/logger"

	"github.com/google/uuid"
)

// LogProvider writes messages to the log instead of a carrier. Used in development.
type LogProvider struct {
	logger *logger.Logger
}

func NewLogProvider(log *logger.Logger) *LogProvider {
	return &LogProvider{logger: log}
}

func (l *LogProvider) Name() string {
	return "log"
}

func (l *LogProvider) SendSMS(ctx context.Context, request *SMSRequest) (*SMSResponse, error) {
	id := uuid.NewString()
	l.logger.WithContext(ctx).WithFields(logger.Fields{
		"to":         request.To,
		"message_id": id,
		"body":       request.Message,
	}).Info("SMS suppressed by log provider")

	return &SMSResponse{MessageID: id, Status: "logged"}, nil
}
