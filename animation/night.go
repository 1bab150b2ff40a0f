package animation

import (
	"math"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// IsNight reports whether now lies outside the daylight of the location.
// The days before and after are checked as well so that the result is right
// for any longitude, whatever UTC date the local evening falls on. Where
// the sun neither rises nor sets on these days the season decides: it is
// night when the sun stands over the other hemisphere.
func IsNight(latitude, longitude float64, now time.Time) bool {
	day := now.UTC()
	known := false
	for _, offset := range []int{-1, 0, 1} {
		d := day.AddDate(0, 0, offset)
		rise, set := sunrise.SunriseSunset(latitude, longitude, d.Year(), d.Month(), d.Day())
		if rise.IsZero() || set.IsZero() {
			continue
		}
		known = true
		if !now.Before(rise) && now.Before(set) {
			return false
		}
	}
	if known {
		return true
	}
	return latitude*declination(day) < 0
}

// declination approximates the sun's declination in degrees on the given day.
func declination(day time.Time) float64 {
	return -23.44 * math.Cos(2*math.Pi/365*float64(day.YearDay()+10))
}
