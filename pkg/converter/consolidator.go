package converter

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/paulcager/osgridref"
	"github.com/rs/zerolog/log"

	"github.com/txc2gtfs/txc2gtfs/pkg/calendar"
	"github.com/txc2gtfs/txc2gtfs/pkg/gtfs"
	"github.com/txc2gtfs/txc2gtfs/pkg/transxchange"
)

// metresPerDegree approximates one degree of latitude, good enough for the
// stop conflict tolerance check.
const metresPerDegree = 111320

// consolidator merges per-file extracts into one identifier namespace. It is
// the sole serialisation point of a conversion run and is deliberately
// single threaded; determinism comes from processing extracts in sorted file
// name order.
type consolidator struct {
	options  Options
	registry *calendar.Registry

	stops     map[string]stopCandidate
	stopOrder []string

	agencies    map[string]gtfs.Agency
	agencyOrder []string

	routes     map[string]routeCandidate
	routeOrder []string

	journeys []journeyCandidate
	tripIDs  map[string]int

	warnings []Warning
}

func newConsolidator(options Options) *consolidator {
	return &consolidator{
		options:  options,
		registry: calendar.NewRegistry(),
		stops:    map[string]stopCandidate{},
		agencies: map[string]gtfs.Agency{},
		routes:   map[string]routeCandidate{},
		tripIDs:  map[string]int{},
	}
}

func (c *consolidator) addExtract(extract *fileExtract) error {
	c.warnings = append(c.warnings, extract.warnings...)

	for _, stop := range extract.stops {
		c.addStop(stop)
	}

	for _, agency := range extract.agencies {
		if _, exists := c.agencies[agency.ID]; !exists {
			c.agencies[agency.ID] = agency
			c.agencyOrder = append(c.agencyOrder, agency.ID)
		}
	}

	for _, route := range extract.routes {
		existing, exists := c.routes[route.Route.ID]
		if !exists {
			c.routes[route.Route.ID] = route
			c.routeOrder = append(c.routeOrder, route.Route.ID)
			continue
		}

		if existing.fingerprint != route.fingerprint {
			return &FeedConflictError{
				Identifier: route.Route.ID,
				FileA:      existing.File,
				FileB:      route.File,
				Detail:     fmt.Sprintf("%q vs %q", existing.fingerprint, route.fingerprint),
			}
		}
	}

	for _, journey := range extract.journeys {
		journey.Trip.ServiceID = c.registry.Register(journey.Calendar)
		journey.Trip.ID = c.uniqueTripID(journey.Trip.ID)

		c.journeys = append(c.journeys, journey)
	}

	return nil
}

// addStop merges one stop definition. The first definition of a code wins;
// later ones only fill in missing pieces, and disagreeing coordinates are
// reported, not merged.
func (c *consolidator) addStop(stop stopCandidate) {
	existing, exists := c.stops[stop.Code]
	if !exists {
		c.stops[stop.Code] = stop
		c.stopOrder = append(c.stopOrder, stop.Code)
		return
	}

	if existing.Name == "" && stop.Name != "" {
		existing.Name = stop.Name
		c.stops[stop.Code] = existing
	}
	if existing.Location == nil && stop.Location != nil {
		existing.Location = stop.Location
		c.stops[stop.Code] = existing
		return
	}

	if c.locationsConflict(existing.Location, stop.Location) {
		warning := Warning{
			Kind:   WarningConflictingStopDefinition,
			File:   stop.File,
			Entity: stop.Code,
			Detail: fmt.Sprintf("coordinates disagree with definition in %s; keeping the first", existing.File),
		}
		c.warnings = append(c.warnings, warning)
		log.Warn().Str("stop", stop.Code).Str("file", stop.File).Str("firstFile", existing.File).
			Msg("Conflicting stop definition")
	}
}

func (c *consolidator) locationsConflict(a *transxchange.Location, b *transxchange.Location) bool {
	if a == nil || b == nil {
		return false
	}

	tolerance := c.options.StopCoordinateToleranceMetres

	if a.HasWGS84() && b.HasWGS84() {
		aLat, aLon := a.WGS84()
		bLat, bLon := b.WGS84()

		return math.Abs(aLat-bLat)*metresPerDegree > tolerance ||
			math.Abs(aLon-bLon)*metresPerDegree > tolerance
	}

	aEasting, aNorthing := a.GridReference()
	bEasting, bNorthing := b.GridReference()
	if aEasting == "" || bEasting == "" {
		// Mixed representations are not comparable without reprojecting;
		// the first definition wins silently.
		return false
	}

	aE, errAE := strconv.ParseFloat(aEasting, 64)
	aN, errAN := strconv.ParseFloat(aNorthing, 64)
	bE, errBE := strconv.ParseFloat(bEasting, 64)
	bN, errBN := strconv.ParseFloat(bNorthing, 64)
	if errAE != nil || errAN != nil || errBE != nil || errBN != nil {
		return false
	}

	return math.Abs(aE-bE) > tolerance || math.Abs(aN-bN) > tolerance
}

func (c *consolidator) uniqueTripID(id string) string {
	count := c.tripIDs[id]
	c.tripIDs[id] = count + 1

	if count == 0 {
		return id
	}

	// Duplicate journey codes happen when the same document is supplied
	// twice; keep both but make the identifier deterministic.
	return fmt.Sprintf("%s:%d", id, count+1)
}

// finalise reprojects stop coordinates, drops trips with dangling or
// irreparable stop references, and builds the output tables.
func (c *consolidator) finalise() *gtfs.Feed {
	coordinates := map[string][2]float64{}
	invalidStops := map[string]bool{}

	for _, code := range c.stopOrder {
		stop := c.stops[code]

		latitude, longitude, err := resolveCoordinates(stop.Location)
		if err != nil {
			err = &InvalidCoordinateError{File: stop.File, Stop: code, Err: err}

			invalidStops[code] = true
			c.warnings = append(c.warnings, Warning{
				Kind:   WarningInvalidCoordinate,
				File:   stop.File,
				Entity: code,
				Detail: err.Error(),
			})
			log.Warn().Err(err).Str("stop", code).Str("file", stop.File).Msg("Dropping stop with invalid coordinate")
			continue
		}

		coordinates[code] = [2]float64{latitude, longitude}
	}

	feed := &gtfs.Feed{}

	usedStops := map[string]bool{}
	usedRoutes := map[string]bool{}
	usedServices := map[string]bool{}

	for _, journey := range c.journeys {
		if !c.journeySurvives(journey, invalidStops) {
			continue
		}

		feed.Trips = append(feed.Trips, journey.Trip)
		usedRoutes[journey.Trip.RouteID] = true
		usedServices[journey.Trip.ServiceID] = true

		for sequence, event := range journey.Events {
			usedStops[event.StopRef] = true

			feed.StopTimes = append(feed.StopTimes, gtfs.StopTime{
				TripID:        journey.Trip.ID,
				ArrivalTime:   formatTravelTime(event.Arrival),
				DepartureTime: formatTravelTime(event.Departure),
				StopID:        event.StopRef,
				StopSequence:  sequence + 1,
				PickupType:    event.Pickup,
				DropOffType:   event.DropOff,
				Timepoint:     event.Timepoint,
			})
		}
	}

	// Only stops referenced by a surviving trip make it into the table.
	stopCodes := make([]string, 0, len(usedStops))
	for code := range usedStops {
		stopCodes = append(stopCodes, code)
	}
	sort.Strings(stopCodes)

	for _, code := range stopCodes {
		stop := c.stops[code]
		position := coordinates[code]

		feed.Stops = append(feed.Stops, gtfs.Stop{
			ID:        code,
			Code:      code,
			Name:      stop.Name,
			Latitude:  position[0],
			Longitude: position[1],
		})
	}

	for _, id := range c.agencyOrder {
		feed.Agencies = append(feed.Agencies, c.agencies[id])
	}

	for _, id := range c.routeOrder {
		if usedRoutes[id] {
			feed.Routes = append(feed.Routes, c.routes[id].Route)
		}
	}

	serviceIDs, calendars := c.registry.All()
	for i, serviceID := range serviceIDs {
		if !usedServices[serviceID] {
			continue
		}

		resolved := calendars[i]

		feed.Calendars = append(feed.Calendars, gtfs.Calendar{
			ServiceID: serviceID,
			Monday:    dayFlag(resolved.Days[0]),
			Tuesday:   dayFlag(resolved.Days[1]),
			Wednesday: dayFlag(resolved.Days[2]),
			Thursday:  dayFlag(resolved.Days[3]),
			Friday:    dayFlag(resolved.Days[4]),
			Saturday:  dayFlag(resolved.Days[5]),
			Sunday:    dayFlag(resolved.Days[6]),
			Start:     resolved.StartDate.Format("20060102"),
			End:       resolved.EndDate.Format("20060102"),
		})

		for _, addition := range resolved.Additions {
			feed.CalendarDates = append(feed.CalendarDates, gtfs.CalendarDate{
				ServiceID:     serviceID,
				Date:          addition.Format("20060102"),
				ExceptionType: gtfs.ExceptionTypeAdded,
			})
		}
		for _, removal := range resolved.Removals {
			feed.CalendarDates = append(feed.CalendarDates, gtfs.CalendarDate{
				ServiceID:     serviceID,
				Date:          removal.Format("20060102"),
				ExceptionType: gtfs.ExceptionTypeRemoved,
			})
		}
	}

	return feed
}

func (c *consolidator) journeySurvives(journey journeyCandidate, invalidStops map[string]bool) bool {
	for _, event := range journey.Events {
		if _, known := c.stops[event.StopRef]; !known {
			err := &DanglingReferenceError{File: journey.File, Journey: journey.Trip.ID, StopRef: event.StopRef}
			c.warnings = append(c.warnings, Warning{
				Kind:   WarningDanglingReference,
				File:   journey.File,
				Entity: journey.Trip.ID,
				Detail: err.Error(),
			})
			log.Warn().Str("journey", journey.Trip.ID).Str("stop", event.StopRef).Msg("Dropping journey with dangling stop reference")
			return false
		}

		if invalidStops[event.StopRef] {
			c.warnings = append(c.warnings, Warning{
				Kind:   WarningInvalidCoordinate,
				File:   journey.File,
				Entity: journey.Trip.ID,
				Detail: fmt.Sprintf("depends on stop %s which has no usable coordinate", event.StopRef),
			})
			log.Warn().Str("journey", journey.Trip.ID).Str("stop", event.StopRef).Msg("Dropping journey depending on invalid stop")
			return false
		}
	}

	return true
}

// resolveCoordinates turns a source location into WGS84, reprojecting the
// British National Grid reference where no direct coordinates exist.
func resolveCoordinates(location *transxchange.Location) (float64, float64, error) {
	if location == nil {
		return 0, 0, fmt.Errorf("stop has no location")
	}

	if location.HasWGS84() {
		latitude, longitude := location.WGS84()
		return latitude, longitude, nil
	}

	easting, northing := location.GridReference()
	if easting == "" || northing == "" {
		return 0, 0, fmt.Errorf("stop has neither coordinates nor a grid reference")
	}

	gridRef, err := osgridref.ParseOsGridRef(fmt.Sprintf("%s,%s", easting, northing))
	if err != nil {
		return 0, 0, err
	}

	latitude, longitude := gridRef.ToLatLon()

	return latitude, longitude, nil
}

func dayFlag(operates bool) int {
	if operates {
		return 1
	}

	return 0
}
