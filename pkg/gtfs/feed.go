package gtfs

// Feed holds the finished tables of one conversion run. Records are in
// deterministic output order; the consolidator owns all identifier
// namespaces referenced between tables.
type Feed struct {
	Agencies      []Agency
	Stops         []Stop
	Routes        []Route
	Trips         []Trip
	StopTimes     []StopTime
	Calendars     []Calendar
	CalendarDates []CalendarDate
}

// tables pairs each file name with its record slice, skipping tables that
// are empty and optional.
func (feed *Feed) tables() map[string]interface{} {
	tables := map[string]interface{}{
		"agency.txt":     feed.Agencies,
		"stops.txt":      feed.Stops,
		"routes.txt":     feed.Routes,
		"trips.txt":      feed.Trips,
		"stop_times.txt": feed.StopTimes,
		"calendar.txt":   feed.Calendars,
	}

	if len(feed.CalendarDates) > 0 {
		tables["calendar_dates.txt"] = feed.CalendarDates
	}

	return tables
}
