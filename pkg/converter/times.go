package converter

import (
	"fmt"
	"time"

	iso8601 "github.com/senseyeio/duration"
)

const timeOfDayFormat = "15:04:05"

// Stop time offsets are tracked as whole seconds since midnight on the
// journey's operating day. GTFS allows hours past 24 for trips running over
// midnight, which time.Time cannot represent, so formatting is done by hand.

func parseTimeOfDay(value string) (int, error) {
	parsed, err := time.Parse(timeOfDayFormat, value)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", value, err)
	}

	return parsed.Hour()*3600 + parsed.Minute()*60 + parsed.Second(), nil
}

// parseISODuration returns the length of an ISO8601 duration (eg. PT5M) in
// seconds. An empty value is a zero duration.
func parseISODuration(value string) (int, error) {
	if value == "" {
		return 0, nil
	}

	parsed, err := iso8601.ParseISO8601(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}

	// The duration library only applies itself to timestamps; measure it
	// against a fixed reference instant.
	reference := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

	return int(parsed.Shift(reference).Sub(reference) / time.Second), nil
}

func formatTravelTime(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}
