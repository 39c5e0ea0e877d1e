package config

import "time"

// MapsConfig enables the optional "near <address>" line in contact notifications.
type MapsConfig struct {
	GoogleMapsAPIKey string        `yaml:"google_maps_api_key"`
	LookupTimeout    time.Duration `yaml:"lookup_timeout"`
}

func (m *MapsConfig) Enabled() bool {
	return m.GoogleMapsAPIKey != ""
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		LookupTimeout:    getEnvAsDuration("GOOGLE_MAPS_LOOKUP_TIMEOUT", 3*time.Second),
	}
}
