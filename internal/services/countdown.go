package services

import (
	"math"
	"strings"
	"time"
)

// TimeLeft is a countdown split into display units
type TimeLeft struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Zero reports whether the countdown has finished
func (t TimeLeft) Zero() bool {
	return t == TimeLeft{}
}

// TimeLeftUntil splits target-now into days/hours/minutes/seconds. A target in
// the past yields all zeros.
func TimeLeftUntil(target, now time.Time) TimeLeft {
	diff := target.Sub(now)
	if diff < 0 {
		diff = 0
	}
	return TimeLeft{
		Days:    int(diff / (24 * time.Hour)),
		Hours:   int(diff % (24 * time.Hour) / time.Hour),
		Minutes: int(diff % time.Hour / time.Minute),
		Seconds: int(diff % time.Minute / time.Second),
	}
}

// DaysUntil rounds the remaining time up to whole days. It may be negative
// once the date has passed; presentations clamp it at zero.
func DaysUntil(target, now time.Time) int {
	return int(math.Ceil(target.Sub(now).Hours() / 24))
}

var birthdayLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseBirthdayDate accepts a calendar date or an RFC 3339 timestamp. Values
// without a zone are read as UTC so the countdown does not depend on the host.
func ParseBirthdayDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range birthdayLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
