package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationChannel string
type NotificationStatus string

const (
	NotificationChannelSMS   NotificationChannel = "sms"
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelNone  NotificationChannel = "none"

	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
	NotificationStatusSkipped NotificationStatus = "skipped"
)

// NotificationOutcome records what happened for a single emergency contact.
type NotificationOutcome struct {
	Contact   string              `json:"contact"`
	Channel   NotificationChannel `json:"channel"`
	Recipient string              `json:"recipient,omitempty"`
	Status    NotificationStatus  `json:"status"`
	Error     string              `json:"error,omitempty"`
}

// FanOutResult summarises one notification fan-out. Outcomes keep the contact order.
type FanOutResult struct {
	DistressID primitive.ObjectID    `json:"distressId"`
	Total      int                   `json:"total"`
	Sent       int                   `json:"sent"`
	Failed     int                   `json:"failed"`
	Skipped    int                   `json:"skipped"`
	Outcomes   []NotificationOutcome `json:"outcomes"`
}
