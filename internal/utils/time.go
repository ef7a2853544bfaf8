package utils

import (
	"time"
)

func FormatTime(t time.Time, timezone string) string {
	if timezone == "" {
		timezone = DefaultTimeZone
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	return t.In(loc).Format("2006-01-02 15:04:05 MST")
}
