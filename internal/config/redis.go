package config

import "time"

// RedisConfig points the rate limiter at a shared store. With REDIS_URL unset limits are kept per process.
type RedisConfig struct {
	URL         string        `yaml:"url"`
	PoolSize    int           `yaml:"pool_size"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	OpTimeout   time.Duration `yaml:"op_timeout"`
}

func (r *RedisConfig) Enabled() bool {
	return r.URL != ""
}

func loadRedisConfig() *RedisConfig {
	return &RedisConfig{
		URL:         getEnv("REDIS_URL", ""),
		PoolSize:    getEnvAsInt("REDIS_POOL_SIZE", 10),
		DialTimeout: getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		OpTimeout:   getEnvAsDuration("REDIS_OP_TIMEOUT", 500*time.Millisecond),
	}
}
