package config

import (
	"errors"
	"time"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")

type DatabaseConfig struct {
	// Driver selects the Data Store implementation: "mongodb" or "memory".
	Driver         string        `yaml:"driver"`
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	MaxPoolSize    int           `yaml:"max_pool_size"`
	MinPoolSize    int           `yaml:"min_pool_size"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	SocketTimeout  time.Duration `yaml:"socket_timeout"`
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Driver:         getEnv("DATABASE_DRIVER", "mongodb"),
		URI:            getEnv("MONGO_URI", getEnv("MONGODB_URI", "mongodb://localhost:27017/distress-server")),
		Database:       getEnv("MONGODB_DATABASE", "distress-server"),
		MaxPoolSize:    getEnvAsInt("MONGODB_MAX_POOL_SIZE", 100),
		MinPoolSize:    getEnvAsInt("MONGODB_MIN_POOL_SIZE", 5),
		ConnectTimeout: getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
		SocketTimeout:  getEnvAsDuration("MONGODB_SOCKET_TIMEOUT", 30*time.Second),
	}
}
