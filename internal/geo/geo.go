// Package geo supplies the sensor position stamped on every alert.
package geo

import "fmt"

// Location is a WGS84 coordinate. Known is false when no position was configured.
type Location struct {
	Latitude  float64
	Longitude float64
	Known     bool
}

// Provider returns the current sensor location.
type Provider interface {
	GetLocation() Location
}

// StaticProvider always reports the same fixed position.
type StaticProvider struct {
	loc Location
}

// NewStaticProvider validates the coordinate range.
func NewStaticProvider(lat, lng float64) (*StaticProvider, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("latitude %v out of range", lat)
	}
	if lng < -180 || lng > 180 {
		return nil, fmt.Errorf("longitude %v out of range", lng)
	}
	return &StaticProvider{loc: Location{Latitude: lat, Longitude: lng, Known: true}}, nil
}

// GetLocation returns the fixed location.
func (s *StaticProvider) GetLocation() Location {
	return s.loc
}

// Unknown is a provider for sensors with no configured position.
type Unknown struct{}

func (Unknown) GetLocation() Location { return Location{} }
