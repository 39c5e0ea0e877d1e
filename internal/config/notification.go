package config

import "time"

type NotificationMode string

const (
	NotificationModeSync  NotificationMode = "sync"
	NotificationModeAsync NotificationMode = "async"
)

type NotificationConfig struct {
	Mode              NotificationMode `yaml:"mode"`
	Timeout           time.Duration    `yaml:"timeout"`
	EscalationBaseURL string           `yaml:"escalation_base_url"`
	EmailSubject      string           `yaml:"email_subject"`
}

type DistressConfig struct {
	// HistoryLimit caps location, telemetry and audio histories to the newest N entries.
	HistoryLimit int `yaml:"history_limit"`
}

func loadNotificationConfig() *NotificationConfig {
	return &NotificationConfig{
		Mode:              NotificationMode(getEnv("NOTIFICATION_MODE", string(NotificationModeSync))),
		Timeout:           getEnvAsDuration("NOTIFICATION_TIMEOUT", 30*time.Second),
		EscalationBaseURL: getEnv("ESCALATION_BASE_URL", "https://distress.netlify.app"),
		EmailSubject:      getEnv("NOTIFICATION_EMAIL_SUBJECT", "Distress signal from your contact"),
	}
}

func loadDistressConfig() *DistressConfig {
	return &DistressConfig{
		HistoryLimit: getEnvAsInt("DISTRESS_HISTORY_LIMIT", 1000),
	}
}
