package converter

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txc2gtfs/txc2gtfs/pkg/bankholidays"
	"github.com/txc2gtfs/txc2gtfs/pkg/gtfs"
	"github.com/txc2gtfs/txc2gtfs/pkg/transxchange"
)

func wgs84(latitude float64, longitude float64) *transxchange.Location {
	return &transxchange.Location{
		LocationInner: transxchange.LocationInner{
			Latitude:  latitude,
			Longitude: longitude,
		},
	}
}

// testDocument builds a minimal but complete document: one operator, one
// weekday service with a single line, and one journey calling at A, B and C.
func testDocument(fileName string) *transxchange.TransXChange {
	return &transxchange.TransXChange{
		FileName:      fileName,
		SchemaVersion: "2.4",

		AnnotatedStopPointRefs: []*transxchange.AnnotatedStopPointRef{
			{StopPointRef: "A", CommonName: "Alpha Road", Location: wgs84(51.5000, -0.1000)},
			{StopPointRef: "B", CommonName: "Bravo Street", Location: wgs84(51.5100, -0.1100)},
			{StopPointRef: "C", CommonName: "Charlie Lane", Location: wgs84(51.5200, -0.1200)},
		},

		Operators: []*transxchange.Operator{
			{ID: "O1", NationalOperatorCode: "TEST", OperatorShortName: "Test Buses"},
		},

		JourneyPatternSections: []*transxchange.JourneyPatternSection{
			{
				ID: "JPS1",
				JourneyPatternTimingLinks: []transxchange.JourneyPatternTimingLink{
					{
						ID:      "TL1",
						RunTime: "PT5M",
						From:    transxchange.JourneyPatternTimingLinkPoint{StopPointRef: "A", TimingStatus: "PTP"},
						To:      transxchange.JourneyPatternTimingLinkPoint{StopPointRef: "B", WaitTime: "PT1M"},
					},
					{
						ID:      "TL2",
						RunTime: "PT3M",
						From:    transxchange.JourneyPatternTimingLinkPoint{StopPointRef: "B"},
						To:      transxchange.JourneyPatternTimingLinkPoint{StopPointRef: "C", TimingStatus: "PTP"},
					},
				},
			},
		},

		Services: []*transxchange.Service{
			{
				ServiceCode:           "SV1",
				RegisteredOperatorRef: "O1",
				Mode:                  "bus",
				OperatingPeriod:       transxchange.DateRange{StartDate: "2025-01-01", EndDate: "2025-01-31"},
				OperatingProfile: transxchange.OperatingProfile{
					XMLValue: `<RegularDayType><DaysOfWeek><MondayToFriday/></DaysOfWeek></RegularDayType>`,
				},
				Lines: []transxchange.Line{
					{ID: "L1", LineName: "42", OutboundDescription: "Alpha Road - Charlie Lane"},
				},
				JourneyPatterns: []*transxchange.JourneyPattern{
					{
						ID:                        "JP1",
						Direction:                 "outbound",
						DestinationDisplay:        "Charlie Lane",
						JourneyPatternSectionRefs: []string{"JPS1"},
					},
				},
			},
		},

		VehicleJourneys: []*transxchange.VehicleJourney{
			{
				VehicleJourneyCode: "VJ1",
				ServiceRef:         "SV1",
				LineRef:            "L1",
				JourneyPatternRef:  "JP1",
				DepartureTime:      "08:00:00",
				OperatorRef:        "O1",
			},
		},
	}
}

func TestConvertSingleDocument(t *testing.T) {
	result, err := Convert([]*transxchange.TransXChange{testDocument("one.xml")}, bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	feed := result.Feed

	require.Len(t, feed.Agencies, 1)
	assert.Equal(t, "OP:TEST", feed.Agencies[0].ID)
	assert.Equal(t, "Test Buses", feed.Agencies[0].Name)
	assert.Equal(t, "Europe/London", feed.Agencies[0].Timezone)

	require.Len(t, feed.Routes, 1)
	assert.Equal(t, "TEST:SV1:L1", feed.Routes[0].ID)
	assert.Equal(t, "OP:TEST", feed.Routes[0].AgencyID)
	assert.Equal(t, "42", feed.Routes[0].ShortName)
	assert.Equal(t, "Alpha Road - Charlie Lane", feed.Routes[0].LongName)
	assert.Equal(t, gtfs.RouteTypeBus, feed.Routes[0].Type)

	require.Len(t, feed.Trips, 1)
	trip := feed.Trips[0]
	assert.Equal(t, "TEST:SV1:L1:VJ1", trip.ID)
	assert.Equal(t, "TEST:SV1:L1", trip.RouteID)
	assert.Equal(t, "S0001", trip.ServiceID)
	assert.Equal(t, "Charlie Lane", trip.Headsign)
	assert.Equal(t, 1, trip.DirectionID)

	require.Len(t, feed.StopTimes, 3)
	assert.Equal(t, 1, feed.StopTimes[0].StopSequence)
	assert.Equal(t, "08:00:00", feed.StopTimes[0].DepartureTime)
	assert.Equal(t, "08:05:00", feed.StopTimes[1].ArrivalTime)
	assert.Equal(t, "08:06:00", feed.StopTimes[1].DepartureTime)
	assert.Equal(t, "08:09:00", feed.StopTimes[2].ArrivalTime)
	assert.Equal(t, 3, feed.StopTimes[2].StopSequence)

	require.Len(t, feed.Stops, 3)
	assert.Equal(t, "A", feed.Stops[0].ID)
	assert.InDelta(t, 51.5, feed.Stops[0].Latitude, 0.0001)

	require.Len(t, feed.Calendars, 1)
	c := feed.Calendars[0]
	assert.Equal(t, "S0001", c.ServiceID)
	assert.Equal(t, 1, c.Monday)
	assert.Equal(t, 0, c.Saturday)
	assert.Equal(t, "20250101", c.Start)
	assert.Equal(t, "20250131", c.End)
	assert.Empty(t, feed.CalendarDates)
}

func TestConvertIsIdempotent(t *testing.T) {
	documents := func() []*transxchange.TransXChange {
		return []*transxchange.TransXChange{testDocument("b.xml"), testDocument("a.xml")}
	}

	// The second document is a copy under another name, so trip identifiers
	// collide and get deterministic suffixes.
	first, err := Convert(documents(), bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)
	second, err := Convert(documents(), bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, len(first.Feed.Trips), len(second.Feed.Trips))
	for i := range first.Feed.Trips {
		assert.Equal(t, first.Feed.Trips[i].ID, second.Feed.Trips[i].ID)
		assert.Equal(t, first.Feed.Trips[i].ServiceID, second.Feed.Trips[i].ServiceID)
	}

	require.Len(t, first.Feed.Trips, 2)
	assert.Equal(t, "TEST:SV1:L1:VJ1", first.Feed.Trips[0].ID)
	assert.Equal(t, "TEST:SV1:L1:VJ1:2", first.Feed.Trips[1].ID)

	// Identical calendars collapse onto one service.
	assert.Equal(t, first.Feed.Trips[0].ServiceID, first.Feed.Trips[1].ServiceID)
	assert.Len(t, first.Feed.Calendars, 1)
}

func TestConvertServiceIDsFollowSortedFileOrder(t *testing.T) {
	// Files with distinct calendars and very uneven journey counts, so the
	// extraction goroutines finish in an order unrelated to file names.
	build := func() []*transxchange.TransXChange {
		var documents []*transxchange.TransXChange

		for i := 0; i < 12; i++ {
			doc := testDocument(fmt.Sprintf("doc%02d.xml", i))
			doc.Services[0].OperatingPeriod.EndDate = fmt.Sprintf("2025-%02d-28", i+1)

			for j := 0; j < i*5; j++ {
				doc.VehicleJourneys = append(doc.VehicleJourneys, &transxchange.VehicleJourney{
					VehicleJourneyCode: fmt.Sprintf("VJ%d", j+2),
					ServiceRef:         "SV1",
					LineRef:            "L1",
					JourneyPatternRef:  "JP1",
					DepartureTime:      fmt.Sprintf("%02d:00:00", 9+j%12),
					OperatorRef:        "O1",
				})
			}

			documents = append(documents, doc)
		}

		return documents
	}

	servicesByTrip := func(result *Result) map[string]string {
		services := map[string]string{}
		for _, trip := range result.Feed.Trips {
			services[trip.ID] = trip.ServiceID
		}
		return services
	}

	first, err := Convert(build(), bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)
	second, err := Convert(build(), bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, servicesByTrip(first), servicesByTrip(second))

	// doc00 consolidates first, so its calendar takes the first identifier;
	// each later file introduces the next one.
	require.Len(t, first.Feed.Calendars, 12)
	for i, c := range first.Feed.Calendars {
		assert.Equal(t, fmt.Sprintf("S%04d", i+1), c.ServiceID)
		assert.Equal(t, fmt.Sprintf("2025%02d28", i+1), c.End)
	}
}

func TestConvertLeavesInputDocumentsUntouched(t *testing.T) {
	doc := testDocument("one.xml")
	doc.VehicleJourneys[0].Frequency = &transxchange.Frequency{
		EndTime: "08:30:00",
		Interval: &struct{ ScheduledFrequency string }{
			ScheduledFrequency: "PT15M",
		},
	}
	documents := []*transxchange.TransXChange{doc}

	first, err := Convert(documents, bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)
	second, err := Convert(documents, bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)

	assert.Len(t, first.Feed.Trips, 3)
	assert.Len(t, second.Feed.Trips, 3, "repeated runs over the same documents see the same journeys")
	assert.Len(t, doc.VehicleJourneys, 1)
}

func TestConvertDropsJourneyWithDanglingStopReference(t *testing.T) {
	doc := testDocument("one.xml")
	doc.JourneyPatternSections[0].JourneyPatternTimingLinks[1].To.StopPointRef = "MISSING"

	result, err := Convert([]*transxchange.TransXChange{doc}, bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, result.Feed.Trips)
	assert.Empty(t, result.Feed.StopTimes)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningDanglingReference, result.Warnings[0].Kind)
	assert.Equal(t, "one.xml", result.Warnings[0].File)
}

func TestConvertExcludesOrphanStops(t *testing.T) {
	doc := testDocument("one.xml")
	doc.AnnotatedStopPointRefs = append(doc.AnnotatedStopPointRefs, &transxchange.AnnotatedStopPointRef{
		StopPointRef: "ORPHAN",
		CommonName:   "Nowhere",
		Location:     wgs84(51.0, -1.0),
	})

	result, err := Convert([]*transxchange.TransXChange{doc}, bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)

	for _, stop := range result.Feed.Stops {
		assert.NotEqual(t, "ORPHAN", stop.ID)
	}
	assert.Len(t, result.Feed.Stops, 3)
}

func TestConvertReportsConflictingStopDefinitions(t *testing.T) {
	a := testDocument("a.xml")
	b := testDocument("b.xml")

	// Move stop A in the second file by roughly a kilometre.
	b.AnnotatedStopPointRefs[0].Location = wgs84(51.5090, -0.1000)

	result, err := Convert([]*transxchange.TransXChange{a, b}, bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)

	var conflict *Warning
	for i := range result.Warnings {
		if result.Warnings[i].Kind == WarningConflictingStopDefinition {
			conflict = &result.Warnings[i]
		}
	}
	require.NotNil(t, conflict)
	assert.Equal(t, "A", conflict.Entity)
	assert.Equal(t, "b.xml", conflict.File)

	// The first definition wins.
	require.NotEmpty(t, result.Feed.Stops)
	assert.InDelta(t, 51.5, result.Feed.Stops[0].Latitude, 0.0001)
}

func TestConvertFailsOnRouteConflict(t *testing.T) {
	a := testDocument("a.xml")
	b := testDocument("b.xml")

	// Same route identifier, different line name: the feeds disagree about
	// what the route is.
	b.Services[0].Lines[0].LineName = "742"

	_, err := Convert([]*transxchange.TransXChange{a, b}, bankholidays.Table{}, DefaultOptions())
	require.Error(t, err)

	var conflict *FeedConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "TEST:SV1:L1", conflict.Identifier)
	assert.Equal(t, "a.xml", conflict.FileA)
	assert.Equal(t, "b.xml", conflict.FileB)
}

func TestConvertDropsUnresolvableJourneys(t *testing.T) {
	doc := testDocument("one.xml")
	doc.VehicleJourneys = append(doc.VehicleJourneys, &transxchange.VehicleJourney{
		VehicleJourneyCode: "VJ2",
		ServiceRef:         "NO_SUCH_SERVICE",
		LineRef:            "L1",
		JourneyPatternRef:  "JP1",
		DepartureTime:      "09:00:00",
	})

	result, err := Convert([]*transxchange.TransXChange{doc}, bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)

	assert.Len(t, result.Feed.Trips, 1)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningUnresolvableJourney, result.Warnings[0].Kind)
	assert.Equal(t, "VJ2", result.Warnings[0].Entity)
}

func TestConvertGridReferenceStops(t *testing.T) {
	doc := testDocument("one.xml")
	for i, stop := range doc.AnnotatedStopPointRefs {
		stop.Location = &transxchange.Location{
			LocationInner: transxchange.LocationInner{
				Easting:  fmt.Sprintf("%d", 530000+i*100),
				Northing: fmt.Sprintf("%d", 180000+i*100),
			},
		}
	}

	result, err := Convert([]*transxchange.TransXChange{doc}, bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Feed.Stops, 3)
	for _, stop := range result.Feed.Stops {
		assert.InDelta(t, 51.5, stop.Latitude, 0.1, "reprojected latitude lands in London")
		assert.InDelta(t, -0.13, stop.Longitude, 0.1, "reprojected longitude lands in London")
	}
}

func TestConvertDropsStopsWithoutCoordinates(t *testing.T) {
	doc := testDocument("one.xml")
	doc.AnnotatedStopPointRefs[2].Location = nil

	result, err := Convert([]*transxchange.TransXChange{doc}, bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)

	// The journey calls at the broken stop, so it is dropped too.
	assert.Empty(t, result.Feed.Trips)

	kinds := map[WarningKind]int{}
	for _, warning := range result.Warnings {
		kinds[warning.Kind]++
	}
	assert.Equal(t, 2, kinds[WarningInvalidCoordinate], "one for the stop, one for the journey")
}

func TestConvertNeverOperatingJourney(t *testing.T) {
	doc := testDocument("one.xml")
	doc.Services[0].OperatingProfile.XMLValue = `<RegularDayType><HolidaysOnly/></RegularDayType>`

	// No holidays in the table, so the calendar is empty.
	result, err := Convert([]*transxchange.TransXChange{doc}, bankholidays.Table{}, DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, result.Feed.Trips)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningNeverOperates, result.Warnings[0].Kind)
}

func TestConvertCalendarDates(t *testing.T) {
	doc := testDocument("one.xml")
	doc.Services[0].OperatingProfile.XMLValue = `
		<RegularDayType><DaysOfWeek><MondayToFriday/></DaysOfWeek></RegularDayType>
		<BankHolidayOperation>
			<DaysOfNonOperation><NewYearsDay/></DaysOfNonOperation>
		</BankHolidayOperation>`

	holidays := bankholidays.Table{
		"NewYearsDay": {time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	result, err := Convert([]*transxchange.TransXChange{doc}, holidays, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Feed.CalendarDates, 1)
	assert.Equal(t, "S0001", result.Feed.CalendarDates[0].ServiceID)
	assert.Equal(t, "20250101", result.Feed.CalendarDates[0].Date)
	assert.Equal(t, gtfs.ExceptionTypeRemoved, result.Feed.CalendarDates[0].ExceptionType)
}
