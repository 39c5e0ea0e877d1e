package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App          *AppConfig          `yaml:"app"`
	Database     *DatabaseConfig     `yaml:"database"`
	Redis        *RedisConfig        `yaml:"redis"`
	SMTP         *SMTPConfig         `yaml:"smtp"`
	SMS          *SMSConfig          `yaml:"sms"`
	Maps         *MapsConfig         `yaml:"maps"`
	MQTT         *MQTTConfig         `yaml:"mqtt"`
	Storage      *StorageConfig      `yaml:"storage"`
	WebSocket    *WebSocketConfig    `yaml:"websocket"`
	Security     *SecurityConfig     `yaml:"security"`
	Notification *NotificationConfig `yaml:"notification"`
	Distress     *DistressConfig     `yaml:"distress"`
}

type AppConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Environment     string        `yaml:"environment"`
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	BaseURL         string        `yaml:"base_url"`
	Debug           bool          `yaml:"debug"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	LogOutput       string        `yaml:"log_output"`
	Timezone        string        `yaml:"timezone"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type SecurityConfig struct {
	JWTSecret          string        `yaml:"jwt_secret"`
	JWTLoginTokenTTL   time.Duration `yaml:"jwt_login_token_ttl"`
	JWTSignupTokenTTL  time.Duration `yaml:"jwt_signup_token_ttl"`
	JWTRefreshTokenTTL time.Duration `yaml:"jwt_refresh_token_ttl"`
	BcryptCost         int           `yaml:"bcrypt_cost"`
	PasswordMinLength  int           `yaml:"password_min_length"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	EscalationRate     string        `yaml:"escalation_rate"`
	LoginRate          string        `yaml:"login_rate"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	TrustedProxies     []string      `yaml:"trusted_proxies"`
	AllowAdminSignup   bool          `yaml:"allow_admin_signup"`
}

func Load() (*Config, error) {
	config := &Config{
		App:          loadAppConfig(),
		Database:     loadDatabaseConfig(),
		Redis:        loadRedisConfig(),
		SMTP:         loadSMTPConfig(),
		SMS:          loadSMSConfig(),
		Maps:         loadMapsConfig(),
		MQTT:         loadMQTTConfig(),
		Storage:      loadStorageConfig(),
		WebSocket:    loadWebSocketConfig(),
		Security:     loadSecurityConfig(),
		Notification: loadNotificationConfig(),
		Distress:     loadDistressConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:            getEnv("APP_NAME", "DistressServer"),
		Version:         getEnv("APP_VERSION", "1.0.0"),
		Environment:     getEnv("APP_ENV", "development"),
		Port:            getEnvAsInt("PORT", getEnvAsInt("APP_PORT", 5000)),
		Host:            getEnv("APP_HOST", "0.0.0.0"),
		BaseURL:         getEnv("APP_BASE_URL", "http://localhost:5000"),
		Debug:           getEnvAsBool("APP_DEBUG", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		LogOutput:       getEnv("LOG_OUTPUT", "stdout"),
		Timezone:        getEnv("APP_TIMEZONE", "UTC"),
		ShutdownTimeout: getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTLoginTokenTTL:   getEnvAsDuration("JWT_LOGIN_TOKEN_TTL", 3*time.Hour),
		JWTSignupTokenTTL:  getEnvAsDuration("JWT_SIGNUP_TOKEN_TTL", time.Hour),
		JWTRefreshTokenTTL: getEnvAsDuration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:         getEnvAsInt("BCRYPT_COST", 10),
		PasswordMinLength:  getEnvAsInt("PASSWORD_MIN_LENGTH", 6),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
		EscalationRate:     getEnv("ESCALATION_RATE_LIMIT", "20-M"),
		LoginRate:          getEnv("LOGIN_RATE_LIMIT", "10-M"),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		AllowAdminSignup:   getEnvAsBool("ALLOW_ADMIN_SIGNUP", false),
	}
}

// Validate reports configuration that would make the server unusable.
func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" {
		if IsProduction() {
			return ErrMissingJWTSecret
		}
		c.Security.JWTSecret = "development-only-secret"
	}
	if c.Distress.HistoryLimit < 1 {
		c.Distress.HistoryLimit = 1
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func IsProduction() bool {
	return getEnv("APP_ENV", "development") == "production"
}
