package pubsub

import "context"

// Publisher delivers a message to a topic. Publish returns once the broker acknowledged it.
type Publisher interface {
	Publish(ctx context.Context, topic string, message []byte) error
	Name() string
	Close() error
}
