package ionosphere

import (
	"fmt"
	"math"
	"time"
)

// mjdEpoch is 1858-11-17T00:00:00 UTC, the zero point of the Modified
// Julian Date scale used by RMextract output.
var mjdEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

// Sample is one ionospheric rotation-measure value at a point in time.
type Sample struct {
	Time time.Time

	// RM is the ionospheric rotation measure along the line of sight,
	// in rad/m².
	RM float64
}

// Series is a time-ordered sequence of RM samples covering one observation.
type Series []Sample

// Validate checks the invariants every consumer relies on: at least one
// sample, strictly increasing timestamps, and finite RM values.
func (s Series) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("ionosphere: empty series")
	}
	for i, smp := range s {
		if math.IsNaN(smp.RM) || math.IsInf(smp.RM, 0) {
			return fmt.Errorf("ionosphere: sample %d at %s has non-finite RM", i, smp.Time.Format(time.RFC3339))
		}
		if i > 0 && !smp.Time.After(s[i-1].Time) {
			return fmt.Errorf("ionosphere: sample %d at %s is not after its predecessor", i, smp.Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Duration returns the time spanned by the series. Zero for a single sample.
func (s Series) Duration() time.Duration {
	if len(s) < 2 {
		return 0
	}
	return s[len(s)-1].Time.Sub(s[0].Time)
}

// Trim returns the samples that fall inside [start, end] inclusive.
// A zero start or end leaves that side unbounded.
func (s Series) Trim(start, end time.Time) Series {
	out := make(Series, 0, len(s))
	for _, smp := range s {
		if !start.IsZero() && smp.Time.Before(start) {
			continue
		}
		if !end.IsZero() && smp.Time.After(end) {
			continue
		}
		out = append(out, smp)
	}
	return out
}

// TimeFromMJD converts a Modified Julian Date to a time.Time.
// Values below 1e6 are interpreted as MJD days, larger values as MJD
// seconds — RMextract drivers emit both conventions.
func TimeFromMJD(v float64) time.Time {
	days := v
	if v >= 1e6 {
		days = v / 86400
	}
	ns := days * 24 * float64(time.Hour)
	return mjdEpoch.Add(time.Duration(ns)).UTC()
}

// MJDFromTime converts a time.Time to MJD days.
func MJDFromTime(t time.Time) float64 {
	return t.Sub(mjdEpoch).Hours() / 24
}
