package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// streetLevelTypes keeps lookups to results a contact could walk to. Country or region level
// matches are not worth a line in an SMS.
var streetLevelTypes = []string{"street_address", "premise", "route", "intersection"}

type GoogleMapsProvider struct {
	client *maps.Client
}

func NewGoogleMapsProvider(apiKey string) (*GoogleMapsProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleMapsProvider{client: client}, nil
}

// ReverseGeocode resolves the alert position to nearby street level addresses, closest first.
func (g *GoogleMapsProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResponse, error) {
	found, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:     &maps.LatLng{Lat: lat, Lng: lng},
		ResultType: streetLevelTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding %.5f,%.5f failed: %w", lat, lng, err)
	}

	response := &GeocodeResponse{Results: make([]GeocodeResult, 0, len(found))}
	for _, place := range found {
		if place.FormattedAddress == "" {
			continue
		}
		response.Results = append(response.Results, GeocodeResult{
			PlaceID: place.PlaceID,
			Address: place.FormattedAddress,
			Coordinates: Location{
				Latitude:  place.Geometry.Location.Lat,
				Longitude: place.Geometry.Location.Lng,
			},
			Types: place.Types,
		})
	}

	return response, nil
}
