package geofence

import (
	"math"

	"github.com/workpulse/timecore-backend-go/internal/pkg/utils"
)

// Boundary is a circular geofence owned by an organization. Centers and radii
// may change between evaluations; a change has no retroactive effect on
// verdicts already embedded in captures.
type Boundary struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	Active       bool
}

// Evaluate checks an observed point against a boundary. It returns nil when
// the verdict is unverifiable: no active boundary configured, no point
// supplied, or malformed numeric input. Downstream treats nil as "do not
// penalize", never as a pass or a fail.
func Evaluate(boundary *Boundary, lat, lng *float64) *bool {
	if boundary == nil || !boundary.Active {
		return nil
	}
	if lat == nil || lng == nil {
		return nil
	}
	if !validCoordinate(*lat, *lng) || !validCoordinate(boundary.Latitude, boundary.Longitude) {
		return nil
	}
	if math.IsNaN(boundary.RadiusMeters) || boundary.RadiusMeters < 0 {
		return nil
	}

	distance := utils.CalculateHaversineDistance(boundary.Latitude, boundary.Longitude, *lat, *lng)
	within := distance <= boundary.RadiusMeters
	return &within
}

func validCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
