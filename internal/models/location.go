package models

import (
	"time"
)

// Coords mirrors the browser geolocation coordinate object.
type Coords struct {
	Accuracy         float64 `json:"accuracy" bson:"accuracy"`
	Altitude         float64 `json:"altitude" bson:"altitude"`
	AltitudeAccuracy float64 `json:"altitudeAccuracy" bson:"altitudeAccuracy"`
	Heading          float64 `json:"heading" bson:"heading"`
	Latitude         float64 `json:"latitude" bson:"latitude"`
	Longitude        float64 `json:"longitude" bson:"longitude"`
	Speed            float64 `json:"speed" bson:"speed"`
}

// LocationSample is one position fix. Timestamp is epoch milliseconds as reported by the device and may carry
// a fractional part.
type LocationSample struct {
	Coords    Coords  `json:"coords" bson:"coords"`
	Timestamp float64 `json:"timestamp" bson:"timestamp"`
}

// TelemetrySample is a device status reading attached to an alert.
type TelemetrySample struct {
	TimeAdded    time.Time `json:"timeAdded" bson:"timeAdded"`
	BatteryLevel string    `json:"batteryLevel" bson:"batteryLevel"`
	PhoneStatus  string    `json:"phoneStatus,omitempty" bson:"phoneStatus,omitempty"`
}

type AudioRecording struct {
	URL       string    `json:"url" bson:"url"`
	TimeAdded time.Time `json:"timeAdded" bson:"timeAdded"`
}
