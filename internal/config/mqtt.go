package config

import (
	"fmt"
	"time"
)

type MQTTConfig struct {
	// Provider is one of "mqtt", "sns" or "log".
	Provider       string        `yaml:"provider"`
	BrokerURL      string        `yaml:"broker_url"`
	Username       string        `yaml:"username"`
	Key            string        `yaml:"key"`
	ClientID       string        `yaml:"client_id"`
	Feed           string        `yaml:"feed"`
	DeployMessage  string        `yaml:"deploy_message"`
	QoS            byte          `yaml:"qos"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
	SNSTopicARN    string        `yaml:"sns_topic_arn"`
	SNSRegion      string        `yaml:"sns_region"`
}

// DeployTopic is the feed topic in Adafruit IO form: <username>/feeds/<feed>.
func (m *MQTTConfig) DeployTopic() string {
	return fmt.Sprintf("%s/feeds/%s", m.Username, m.Feed)
}

func loadMQTTConfig() *MQTTConfig {
	return &MQTTConfig{
		Provider:       getEnv("DRONE_PUBLISHER", "mqtt"),
		BrokerURL:      getEnv("MQTT_BROKER_URL", "ssl://io.adafruit.com:8883"),
		Username:       getEnv("MQTT_USERNAME", "olowodev"),
		Key:            getEnv("IO_KEY", getEnv("MQTT_KEY", "")),
		ClientID:       getEnv("MQTT_CLIENT_ID", "distress-server"),
		Feed:           getEnv("MQTT_FEED", "deployDrone"),
		DeployMessage:  getEnv("DRONE_DEPLOY_MESSAGE", "Deploy Drone!"),
		QoS:            byte(getEnvAsInt("MQTT_QOS", 1)),
		ConnectTimeout: getEnvAsDuration("MQTT_CONNECT_TIMEOUT", 10*time.Second),
		PublishTimeout: getEnvAsDuration("MQTT_PUBLISH_TIMEOUT", 10*time.Second),
		SNSTopicARN:    getEnv("DRONE_SNS_TOPIC_ARN", ""),
		SNSRegion:      getEnv("AWS_REGION", "us-east-1"),
	}
}
