package email

import (
	"context"

	"distress-server/pkg/logger"
)

// LogProvider writes mail to the log. Used when SMTP_HOST is unset.
type LogProvider struct {
	logger *logger.Logger
}

func NewLogProvider(log *logger.Logger) *LogProvider {
	return &LogProvider{logger: log}
}

func (l *LogProvider) Name() string {
	return "log"
}

func (l *LogProvider) SendEmail(ctx context.Context, request *EmailRequest) error {
	l.logger.WithContext(ctx).WithFields(logger.Fields{
		"to":      request.To,
		"subject": request.Subject,
		"body":    request.BodyText,
	}).Info("Email suppressed by log provider")
	return nil
}
