package config

import "time"

type SMTPConfig struct {
	Host      string        `yaml:"host"`
	Port      int           `yaml:"port"`
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	FromEmail string        `yaml:"from_email"`
	FromName  string        `yaml:"from_name"`
	TLS       bool          `yaml:"tls"`
	Timeout   time.Duration `yaml:"timeout"`
}

func (s *SMTPConfig) Enabled() bool {
	return s.Host != ""
}

func loadSMTPConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:      getEnv("SMTP_HOST", ""),
		Port:      getEnvAsInt("SMTP_PORT", 587),
		Username:  getEnv("SMTP_USERNAME", ""),
		Password:  getEnv("SMTP_PASSWORD", ""),
		FromEmail: getEnv("SMTP_FROM_EMAIL", "alerts@distress.local"),
		FromName:  getEnv("SMTP_FROM_NAME", "Distress Alerts"),
		TLS:       getEnvAsBool("SMTP_TLS", true),
		Timeout:   getEnvAsDuration("SMTP_TIMEOUT", 30*time.Second),
	}
}
