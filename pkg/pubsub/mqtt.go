package pubsub

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

type MQTTConfig struct {
	BrokerURL      string
	ClientID       string
	Username       string
	Password       string
	QoS            byte
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

type MQTTPublisher struct {
	client  mqtt.Client
	qos     byte
	timeout time.Duration
}

// NewMQTTPublisher connects once and keeps the session for the life of the process.
func NewMQTTPublisher(config MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(config.BrokerURL).
		SetClientID(config.ClientID).
		SetUsername(config.Username).
		SetPassword(config.Password).
		SetAutoReconnect(true).
		SetConnectRetry(false).
		SetConnectTimeout(config.ConnectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(config.ConnectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", config.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	timeout := config.PublishTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &MQTTPublisher{
		client:  client,
		qos:     config.QoS,
		timeout: timeout,
	}, nil
}

func (m *MQTTPublisher) Name() string {
	return "mqtt"
}

func (m *MQTTPublisher) Publish(ctx context.Context, topic string, message []byte) error {
	token := m.client.Publish(topic, m.qos, false, message)

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish to %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrPublishTimeout
	}
}

func (m *MQTTPublisher) Close() error {
	m.client.Disconnect(250)
	return nil
}
