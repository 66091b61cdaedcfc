package domain

import "time"

// Accepted input layouts, tried in order
var dateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses user supplied dates as UTC.
// An empty string is absent (nil, true); an unrecognised one is invalid (nil, false).
func ParseDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t, true
		}
	}
	return nil, false
}
