package utils

import (
	"time"
)

var newYorkLoc *time.Location

func init() {
	var err error
	newYorkLoc, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to UTC if timezone data is missing
		// In production docker, ensure tzdata is installed
		newYorkLoc = time.UTC
	}
}

// GetLocation returns the exchange *time.Location (America/New_York)
func GetLocation() *time.Location {
	return newYorkLoc
}

// LastTradingDay returns the date of the most recent weekday on or before t in exchange time.
// Exchange holidays are not taken into account.
func LastTradingDay(t time.Time) time.Time {
	local := t.In(newYorkLoc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, newYorkLoc)
	switch day.Weekday() {
	case time.Saturday:
		return day.AddDate(0, 0, -1)
	case time.Sunday:
		return day.AddDate(0, 0, -2)
	}
	return day
}

// IsMarketHours reports whether t falls in the regular session, 09:30-16:00 exchange time on weekdays
func IsMarketHours(t time.Time) bool {
	local := t.In(newYorkLoc)
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false
	}
	minutes := local.Hour()*60 + local.Minute()
	return minutes >= 9*60+30 && minutes < 16*60
}
