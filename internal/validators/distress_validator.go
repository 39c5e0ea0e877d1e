package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"distress-server/internal/models"
)

// FlexibleString accepts either a JSON string or a JSON number. Devices report battery level both ways.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexibleString(strings.TrimSpace(s))
		return nil
	}

	var n float64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return errors.New("value must be a string or a number")
	}
	*f = FlexibleString(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// OneOrMany decodes either a single object or an array of objects.
type OneOrMany[T any] []T

func (o *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*o = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var many []T
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}

	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*o = OneOrMany[T]{one}
	return nil
}

// CoordsInput requires every coordinate field. A missing heading or speed is rejected rather than stored as zero.
type CoordsInput struct {
	Accuracy         *float64 `json:"accuracy" validate:"required"`
	Altitude         *float64 `json:"altitude" validate:"required"`
	AltitudeAccuracy *float64 `json:"altitudeAccuracy" validate:"required"`
	Heading          *float64 `json:"heading" validate:"required"`
	Latitude         *float64 `json:"latitude" validate:"required,latitude"`
	Longitude        *float64 `json:"longitude" validate:"required,longitude"`
	Speed            *float64 `json:"speed" validate:"required"`
}

type LocationInput struct {
	Coords    *CoordsInput `json:"coords" validate:"required"`
	Timestamp *float64     `json:"timestamp" validate:"required"`
}

type TelemetryInput struct {
	BatteryLevel FlexibleString `json:"batteryLevel" validate:"required,numeric_string"`
	PhoneStatus  string         `json:"phoneStatus" validate:"max=200"`
	TimeAdded    *time.Time     `json:"timeAdded"`
}

type CreateDistressRequest struct {
	Message           string                    `json:"message" validate:"required,max=5000"`
	Location          OneOrMany[LocationInput]  `json:"location" validate:"required,len=1,dive"`
	AdditionalDetails OneOrMany[TelemetryInput] `json:"additionalDetails" validate:"required,len=1,dive"`
}

// UpdateDistressRequest prepends the given samples. The first element of each array becomes the newest entry.
type UpdateDistressRequest struct {
	Message           *string                   `json:"message" validate:"omitempty,max=5000"`
	Location          OneOrMany[LocationInput]  `json:"location" validate:"omitempty,dive"`
	AdditionalDetails OneOrMany[TelemetryInput] `json:"additionalDetails" validate:"omitempty,dive"`
	Resolved          *bool                     `json:"resolved"`
	DroneDeployed     *bool                     `json:"droneDeployed"`
}

// EscalateRequest comes from bystanders, so contact details are stored as typed. Only lengths are capped.
type EscalateRequest struct {
	Email          string `json:"email" validate:"max=320"`
	PhoneNumber    string `json:"phoneNumber" validate:"max=64"`
	AdditionalInfo string `json:"additionalInfo" validate:"max=2000"`
}

type DeployRequest struct {
	DistressID string `json:"distressId" validate:"required,object_id"`
}

func ValidateCreateDistress(req *CreateDistressRequest) ValidationErrors {
	req.Message = strings.TrimSpace(req.Message)
	return ValidateStruct(req)
}

func ValidateUpdateDistress(req *UpdateDistressRequest) ValidationErrors {
	errs := ValidateStruct(req)
	if req.Message != nil && strings.TrimSpace(*req.Message) == "" {
		errs = append(errs, ValidationError{Field: "Message", Tag: "required", Message: "Message cannot be empty"})
	}
	return errs
}

func ValidateEscalate(req *EscalateRequest) ValidationErrors {
	req.Email = strings.TrimSpace(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.AdditionalInfo = strings.TrimSpace(req.AdditionalInfo)
	return ValidateStruct(req)
}

func (req *UpdateDistressRequest) ToUpdate(now time.Time) *models.DistressUpdate {
	update := &models.DistressUpdate{
		Resolved:          req.Resolved,
		DroneDeployed:     req.DroneDeployed,
		Location:          ToLocationSamples(req.Location),
		AdditionalDetails: ToTelemetrySamples(req.AdditionalDetails, now),
	}
	if req.Message != nil {
		message := strings.TrimSpace(*req.Message)
		update.Message = &message
	}
	return update
}

func ToLocationSamples(inputs []LocationInput) []models.LocationSample {
	if len(inputs) == 0 {
		return nil
	}
	samples := make([]models.LocationSample, 0, len(inputs))
	for _, in := range inputs {
		sample := models.LocationSample{}
		if in.Timestamp != nil {
			sample.Timestamp = *in.Timestamp
		}
		if c := in.Coords; c != nil {
			sample.Coords = models.Coords{
				Accuracy:         deref(c.Accuracy),
				Altitude:         deref(c.Altitude),
				AltitudeAccuracy: deref(c.AltitudeAccuracy),
				Heading:          deref(c.Heading),
				Latitude:         deref(c.Latitude),
				Longitude:        deref(c.Longitude),
				Speed:            deref(c.Speed),
			}
		}
		samples = append(samples, sample)
	}
	return samples
}

// ToTelemetrySamples stamps samples without a timeAdded with now.
func ToTelemetrySamples(inputs []TelemetryInput, now time.Time) []models.TelemetrySample {
	if len(inputs) == 0 {
		return nil
	}
	samples := make([]models.TelemetrySample, 0, len(inputs))
	for _, in := range inputs {
		sample := models.TelemetrySample{
			BatteryLevel: string(in.BatteryLevel),
			PhoneStatus:  strings.TrimSpace(in.PhoneStatus),
			TimeAdded:    now,
		}
		if in.TimeAdded != nil && !in.TimeAdded.IsZero() {
			sample.TimeAdded = *in.TimeAdded
		}
		samples = append(samples, sample)
	}
	return samples
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func indexed(field string, i int, child string) string {
	return field + "[" + itoa(i) + "]." + child
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
