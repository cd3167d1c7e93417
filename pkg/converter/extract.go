package converter

import (
	"fmt"
	"strings"

	"github.com/txc2gtfs/txc2gtfs/pkg/bankholidays"
	"github.com/txc2gtfs/txc2gtfs/pkg/calendar"
	"github.com/txc2gtfs/txc2gtfs/pkg/gtfs"
	"github.com/txc2gtfs/txc2gtfs/pkg/transxchange"
)

// fileExtract is everything one source document contributes to the feed,
// produced without any cross-file state so files can be processed in
// parallel. The consolidator merges extracts serially.
type fileExtract struct {
	fileName string

	stops    []stopCandidate
	agencies []gtfs.Agency
	routes   []routeCandidate
	journeys []journeyCandidate

	warnings []Warning
}

type stopCandidate struct {
	Code     string
	Name     string
	Location *transxchange.Location
	File     string
}

type routeCandidate struct {
	Route gtfs.Route
	File  string

	// fingerprint captures the route's semantic identity; the same route ID
	// with a different fingerprint in another file is a feed conflict.
	fingerprint string
}

type journeyCandidate struct {
	Trip     gtfs.Trip
	Calendar *calendar.Calendar
	Events   []stopTimeEvent
	File     string
}

func extractFile(doc *transxchange.TransXChange, holidays bankholidays.Table, options Options) *fileExtract {
	extract := &fileExtract{
		fileName: doc.FileName,
	}

	journeys, frequencyWarnings := materialiseFrequencies(doc)
	extract.warnings = append(extract.warnings, frequencyWarnings...)

	for _, stopPoint := range doc.StopPoints {
		extract.stops = append(extract.stops, stopCandidate{
			Code:     stopPoint.AtcoCode,
			Name:     stopPoint.Descriptor.CommonName,
			Location: stopPoint.Location,
			File:     doc.FileName,
		})
	}
	for _, stopPointRef := range doc.AnnotatedStopPointRefs {
		extract.stops = append(extract.stops, stopCandidate{
			Code:     stopPointRef.StopPointRef,
			Name:     stopPointRef.CommonName,
			Location: stopPointRef.Location,
			File:     doc.FileName,
		})
	}

	// Local operator references are only unique within the document; the
	// National Operator Code carries identity across files.
	operators := map[string]*transxchange.Operator{}
	for _, operator := range doc.Operators {
		operators[operator.ID] = operator
	}

	sections := map[string]*transxchange.JourneyPatternSection{}
	for _, section := range doc.JourneyPatternSections {
		sections[section.ID] = section
	}

	services := map[string]*transxchange.Service{}
	patterns := map[string]map[string]*transxchange.JourneyPattern{}
	seenAgencies := map[string]bool{}
	seenRoutes := map[string]bool{}

	for _, service := range doc.Services {
		services[service.ServiceCode] = service

		patterns[service.ServiceCode] = map[string]*transxchange.JourneyPattern{}
		for _, pattern := range service.JourneyPatterns {
			patterns[service.ServiceCode][pattern.ID] = pattern
		}
	}

	for _, journey := range journeys {
		service := services[journey.ServiceRef]
		if service == nil {
			extract.drop(journey, fmt.Sprintf("unknown service %q", journey.ServiceRef))
			continue
		}

		line := findLine(service, journey.LineRef)
		if line == nil {
			extract.drop(journey, fmt.Sprintf("unknown line %q", journey.LineRef))
			continue
		}

		operator := findOperator(operators, journey, service)
		if operator == nil {
			extract.drop(journey, "unknown operator reference")
			continue
		}

		pattern := patterns[journey.ServiceRef][journey.JourneyPatternRef]
		if pattern == nil {
			extract.drop(journey, fmt.Sprintf("unknown journey pattern %q", journey.JourneyPatternRef))
			continue
		}

		profile, err := effectiveProfile(journey, pattern, service)
		if err != nil {
			extract.drop(journey, fmt.Sprintf("invalid operating profile: %s", err))
			continue
		}

		resolved, err := calendar.Resolve(profile, service.OperatingPeriod, holidays, doc)
		if err != nil {
			extract.drop(journey, fmt.Sprintf("failed to resolve calendar: %s", err))
			continue
		}

		if resolved.IsNever() {
			extract.warnings = append(extract.warnings, Warning{
				Kind:   WarningNeverOperates,
				File:   doc.FileName,
				Entity: journey.VehicleJourneyCode,
				Detail: "journey's calendar never operates",
			})
			continue
		}

		events, err := expandVehicleJourney(journey, pattern, sections)
		if err != nil {
			extract.drop(journey, err.Error())
			continue
		}

		agencyID := fmt.Sprintf("OP:%s", operator.Code())
		routeID := fmt.Sprintf("%s:%s:%s", operator.Code(), service.ServiceCode, line.ID)

		if !seenAgencies[agencyID] {
			seenAgencies[agencyID] = true
			extract.agencies = append(extract.agencies, gtfs.Agency{
				ID:       agencyID,
				Name:     operator.Name(),
				URL:      options.Agency.URL,
				Timezone: options.Agency.Timezone,
				Language: options.Agency.Language,
				NOC:      operator.NationalOperatorCode,
			})
		}

		if !seenRoutes[routeID] {
			seenRoutes[routeID] = true
			extract.routes = append(extract.routes, routeCandidate{
				Route: gtfs.Route{
					ID:        routeID,
					AgencyID:  agencyID,
					ShortName: line.LineName,
					LongName:  routeLongName(service, line),
					Type:      routeType(service.Mode),
				},
				File:        doc.FileName,
				fingerprint: fmt.Sprintf("%s|%s", agencyID, line.LineName),
			})
		}

		headsign := pattern.DestinationDisplay
		if journey.DestinationDisplay != "" {
			headsign = journey.DestinationDisplay
		}

		direction := journey.Direction
		if direction == "" {
			direction = pattern.Direction
		}

		extract.journeys = append(extract.journeys, journeyCandidate{
			Trip: gtfs.Trip{
				RouteID:     routeID,
				ID:          fmt.Sprintf("%s:%s", routeID, journey.VehicleJourneyCode),
				Headsign:    headsign,
				BlockID:     journey.Operational.Block.BlockNumber,
				DirectionID: directionID(direction),
			},
			Calendar: resolved,
			Events:   events,
			File:     doc.FileName,
		})
	}

	return extract
}

func (e *fileExtract) drop(journey *transxchange.VehicleJourney, detail string) {
	e.warnings = append(e.warnings, Warning{
		Kind:   WarningUnresolvableJourney,
		File:   e.fileName,
		Entity: journey.VehicleJourneyCode,
		Detail: detail,
	})
}

// effectiveProfile picks the most specific operating profile: the vehicle
// journey's own, then the journey pattern's, then the service default.
func effectiveProfile(
	journey *transxchange.VehicleJourney,
	pattern *transxchange.JourneyPattern,
	service *transxchange.Service,
) (*transxchange.OperatingProfile, error) {
	profile := &service.OperatingProfile
	if pattern.OperatingProfile.IsDefined() {
		profile = &pattern.OperatingProfile
	}
	if journey.OperatingProfile.IsDefined() {
		profile = &journey.OperatingProfile
	}

	if err := profile.Parse(); err != nil {
		return nil, err
	}

	return profile, nil
}

func findLine(service *transxchange.Service, lineRef string) *transxchange.Line {
	for i := range service.Lines {
		if service.Lines[i].ID == lineRef {
			return &service.Lines[i]
		}
	}

	// Some documents leave LineRef unset when the service only has one line.
	if lineRef == "" && len(service.Lines) == 1 {
		return &service.Lines[0]
	}

	return nil
}

func findOperator(
	operators map[string]*transxchange.Operator,
	journey *transxchange.VehicleJourney,
	service *transxchange.Service,
) *transxchange.Operator {
	ref := journey.OperatorRef
	if ref == "" {
		ref = service.RegisteredOperatorRef
	}

	if operator := operators[ref]; operator != nil {
		return operator
	}

	// Some documents use inconsistent references; when there is only one
	// operator defined it must be the one meant.
	if len(operators) == 1 {
		for _, operator := range operators {
			return operator
		}
	}

	return nil
}

func routeLongName(service *transxchange.Service, line *transxchange.Line) string {
	if line.OutboundDescription != "" {
		return line.OutboundDescription
	}
	if line.InboundDescription != "" {
		return line.InboundDescription
	}
	if service.Origin != "" && service.Destination != "" {
		return fmt.Sprintf("%s - %s", service.Origin, service.Destination)
	}

	return ""
}

func routeType(mode string) int {
	switch strings.ToLower(mode) {
	case "underground", "metro":
		return gtfs.RouteTypeMetro
	case "rail":
		return gtfs.RouteTypeRail
	case "boat", "ferry":
		return gtfs.RouteTypeFerry
	case "tram":
		return gtfs.RouteTypeTram
	case "coach":
		return gtfs.RouteTypeCoach
	default:
		return gtfs.RouteTypeBus
	}
}

func directionID(direction string) int {
	if direction == "outbound" {
		return 1
	}

	return 0
}
