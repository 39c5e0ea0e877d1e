package config

import (
	"time"
)

type WebSocketConfig struct {
	Path             string        `yaml:"path"`
	ReadBufferSize   int           `yaml:"read_buffer_size"`
	WriteBufferSize  int           `yaml:"write_buffer_size"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	PongTimeout      time.Duration `yaml:"pong_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	MaxMessageSize   int64         `yaml:"max_message_size"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
}

func loadWebSocketConfig() *WebSocketConfig {
	return &WebSocketConfig{
		Path:             getEnv("WEBSOCKET_PATH", "/audio/ws"),
		ReadBufferSize:   getEnvAsInt("WEBSOCKET_READ_BUFFER_SIZE", 4096),
		WriteBufferSize:  getEnvAsInt("WEBSOCKET_WRITE_BUFFER_SIZE", 4096),
		HandshakeTimeout: getEnvAsDuration("WEBSOCKET_HANDSHAKE_TIMEOUT", 10*time.Second),
		PongTimeout:      getEnvAsDuration("WEBSOCKET_PONG_TIMEOUT", 60*time.Second),
		WriteTimeout:     getEnvAsDuration("WEBSOCKET_WRITE_TIMEOUT", 10*time.Second),
		MaxMessageSize:   int64(getEnvAsInt("WEBSOCKET_MAX_MESSAGE_SIZE", 16*1024*1024)),
		AllowedOrigins:   getEnvAsSlice("WEBSOCKET_ALLOWED_ORIGINS", []string{"*"}),
	}
}
