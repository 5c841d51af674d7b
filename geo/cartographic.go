package geo

import "math"

// Cartographic is a geodetic position. Longitude and Latitude are in
// radians, Height is in meters above the ellipsoid surface.
type Cartographic struct {
	Longitude float64
	Latitude  float64
	Height    float64
}

func CartographicFromDegrees(longitude, latitude, height float64) Cartographic {
	return Cartographic{
		Longitude: longitude * math.Pi / 180,
		Latitude:  latitude * math.Pi / 180,
		Height:    height,
	}
}
