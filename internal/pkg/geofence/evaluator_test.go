package geofence

import (
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestEvaluateWithinBoundary(t *testing.T) {
	boundary := &Boundary{Latitude: 0, Longitude: 0, RadiusMeters: 200, Active: true}

	// 0.0015 degrees of latitude is roughly 167 meters.
	got := Evaluate(boundary, ptr(0.0015), ptr(0))
	if got == nil || !*got {
		t.Fatalf("Evaluate(167m from center, 200m radius) = %v, want true", got)
	}
}

func TestEvaluateOutsideBoundary(t *testing.T) {
	boundary := &Boundary{Latitude: 0, Longitude: 0, RadiusMeters: 200, Active: true}

	// 0.003 degrees of latitude is roughly 334 meters.
	got := Evaluate(boundary, ptr(0.003), ptr(0))
	if got == nil || *got {
		t.Fatalf("Evaluate(334m from center, 200m radius) = %v, want false", got)
	}
}

func TestEvaluateExactCenter(t *testing.T) {
	boundary := &Boundary{Latitude: -6.2, Longitude: 106.8, RadiusMeters: 50, Active: true}

	got := Evaluate(boundary, ptr(-6.2), ptr(106.8))
	if got == nil || !*got {
		t.Fatalf("Evaluate(center point) = %v, want true", got)
	}
}

func TestEvaluateUnverifiable(t *testing.T) {
	active := &Boundary{Latitude: 0, Longitude: 0, RadiusMeters: 200, Active: true}

	cases := []struct {
		name     string
		boundary *Boundary
		lat, lng *float64
	}{
		{"nil boundary", nil, ptr(0), ptr(0)},
		{"inactive boundary", &Boundary{Latitude: 0, Longitude: 0, RadiusMeters: 200}, ptr(0), ptr(0)},
		{"missing latitude", active, nil, ptr(0)},
		{"missing longitude", active, ptr(0), nil},
		{"missing both", active, nil, nil},
		{"latitude NaN", active, ptr(math.NaN()), ptr(0)},
		{"longitude Inf", active, ptr(0), ptr(math.Inf(1))},
		{"latitude out of range", active, ptr(91), ptr(0)},
		{"longitude out of range", active, ptr(0), ptr(181)},
		{"negative radius", &Boundary{Latitude: 0, Longitude: 0, RadiusMeters: -1, Active: true}, ptr(0), ptr(0)},
		{"NaN radius", &Boundary{Latitude: 0, Longitude: 0, RadiusMeters: math.NaN(), Active: true}, ptr(0), ptr(0)},
		{"malformed center", &Boundary{Latitude: 120, Longitude: 0, RadiusMeters: 200, Active: true}, ptr(0), ptr(0)},
	}
	for _, c := range cases {
		if got := Evaluate(c.boundary, c.lat, c.lng); got != nil {
			t.Errorf("%s: Evaluate() = %v, want nil", c.name, *got)
		}
	}
}
