package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EscalatedBy struct {
	Email       string `json:"email,omitempty" bson:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
}

// Escalation only ever moves from Status=false to Status=true.
type Escalation struct {
	Status         bool        `json:"status" bson:"status"`
	By             EscalatedBy `json:"by" bson:"by"`
	AdditionalInfo string      `json:"additionalInfo" bson:"additionalInfo"`
}

type Distress struct {
	ID                primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID            primitive.ObjectID `json:"user" bson:"user"`
	Message           string             `json:"message" bson:"message"`
	Location          []LocationSample   `json:"location" bson:"location"`
	AdditionalDetails []TelemetrySample  `json:"additionalDetails" bson:"additionalDetails"`
	Escalated         Escalation         `json:"escalated" bson:"escalated"`
	DroneDeployed     bool               `json:"droneDeployed" bson:"droneDeployed"`
	Resolved          bool               `json:"resolved" bson:"resolved"`
	AudioRecordings   []AudioRecording   `json:"audioRecordings" bson:"audioRecordings"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// LatestLocation returns the head of the location history.
func (d *Distress) LatestLocation() (LocationSample, bool) {
	if len(d.Location) == 0 {
		return LocationSample{}, false
	}
	return d.Location[0], true
}

func (d *Distress) LatestDetails() (TelemetrySample, bool) {
	if len(d.AdditionalDetails) == 0 {
		return TelemetrySample{}, false
	}
	return d.AdditionalDetails[0], true
}

// DistressUpdate is a partial update. Nil fields are left untouched and sample slices are prepended.
type DistressUpdate struct {
	Message           *string
	Resolved          *bool
	DroneDeployed     *bool
	Location          []LocationSample
	AdditionalDetails []TelemetrySample
}

func (u *DistressUpdate) IsEmpty() bool {
	return u.Message == nil && u.Resolved == nil && u.DroneDeployed == nil &&
		len(u.Location) == 0 && len(u.AdditionalDetails) == 0
}
