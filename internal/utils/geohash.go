package utils

import (
	"math"

	"github.com/mmcloughlin/geohash"

	"github.com/openride/dispatch/internal/pkg/models"
)

// GeohashPrecision is the precision used for stored location samples
// (~150m cells, enough for proximity bucketing).
const GeohashPrecision = 7

// EncodeLocation converts a location to a geohash string
func EncodeLocation(loc models.GeoLocation, precision uint) string {
	return geohash.EncodeWithPrecision(loc.Latitude, loc.Longitude, precision)
}

// DecodeGeohash converts a geohash string to latitude and longitude
func DecodeGeohash(hash string) (latitude, longitude float64) {
	return geohash.Decode(hash)
}

// CalculateDistanceKm calculates the distance between two points in
// kilometers using the Haversine formula
func CalculateDistanceKm(a, b models.GeoLocation) float64 {
	const earthRadius = 6371.0

	lat1 := a.Latitude * math.Pi / 180.0
	lon1 := a.Longitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	lon2 := b.Longitude * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ValidateCoordinates checks that a lat/lon pair is on the globe
func ValidateCoordinates(latitude, longitude float64) bool {
	if latitude < -90 || latitude > 90 {
		return false
	}
	if longitude < -180 || longitude > 180 {
		return false
	}
	return true
}
