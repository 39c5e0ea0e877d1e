package sms

import (
	"context"
	"time"
)

// SMSProvider delivers a single text to one handset.
type SMSProvider interface {
	SendSMS(ctx context.Context, request *SMSRequest) (*SMSResponse, error)
	Name() string
}

// Category tells carriers how to route the message. Alerts always go out as transactional.
type Category string

const (
	CategoryAlert  Category = "alert"
	CategoryNotice Category = "notice"
)

type SMSRequest struct {
	To       string   `json:"to"`
	From     string   `json:"from"`
	Message  string   `json:"message"`
	Category Category `json:"category"`
	// ValidFor drops the message at the carrier if it cannot be delivered in time. Zero means the provider default.
	ValidFor time.Duration `json:"valid_for"`
}

type SMSResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}
