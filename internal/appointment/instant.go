package appointment

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02/01/2006",
	"2/1/2006",
}

// Layouts where the date field already carries a time of day.
var dateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04PM",
	"3:04 PM",
	"3:04pm",
	"3:04 pm",
	"3PM",
	"3pm",
}

// parseInstant combines a date and a time of day into one wall-clock instant
// in loc. It reports false only when the date cannot be understood. A time
// that cannot be read falls back to the time carried by the date field, or
// to midnight.
func parseInstant(date, clock string, loc *time.Location) (time.Time, bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		return time.Time{}, false
	}

	day, ok := parseWith(dateLayouts, date, loc)
	if !ok {
		if day, ok = parseWith(dateTimeLayouts, date, loc); !ok {
			return time.Time{}, false
		}
	}

	tod, ok := parseWith(timeLayouts, clock, time.UTC)
	if !ok {
		return day, true
	}

	return time.Date(day.Year(), day.Month(), day.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0, loc), true
}

func parseWith(layouts []string, value string, loc *time.Location) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
