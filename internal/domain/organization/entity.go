package organization

import (
	"time"

	"github.com/workpulse/timecore-backend-go/internal/pkg/geofence"
)

// DefaultLateCutoff is the local wall-clock time after which a verified
// clock-in is classified late, unless the organization overrides it.
const DefaultLateCutoff = "09:30"

type Organization struct {
	ID         string
	Name       string
	Timezone   string
	LateCutoff string // "HH:MM" local time
	Geofence   *geofence.Boundary
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Location resolves the organization's timezone, falling back to UTC for
// unknown zone names.
func (o *Organization) Location() *time.Location {
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LateCutoffAt returns the late-cutoff instant for the calendar day of the
// given local time.
func (o *Organization) LateCutoffAt(dayLocal time.Time) time.Time {
	cutoff := o.LateCutoff
	if cutoff == "" {
		cutoff = DefaultLateCutoff
	}
	parsed, err := time.Parse("15:04", cutoff)
	if err != nil {
		parsed, _ = time.Parse("15:04", DefaultLateCutoff)
	}
	return time.Date(
		dayLocal.Year(), dayLocal.Month(), dayLocal.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		dayLocal.Location(),
	)
}
