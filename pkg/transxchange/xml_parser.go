package transxchange

import (
	"encoding/xml"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// ParseXMLFile reads a single TransXChange document into its entity graph.
// It streams the document token by token so that only the elements we care
// about are fully decoded.
func ParseXMLFile(reader io.Reader, fileName string) (*TransXChange, error) {
	transXChange := TransXChange{
		FileName: fileName,
	}

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := d.Token()
		if tok == nil || err == io.EOF {
			break
		} else if err != nil {
			return nil, &MalformedScheduleError{File: fileName, Path: "TransXChange", Err: err}
		}

		switch ty := tok.(type) {
		case xml.StartElement:
			switch ty.Name.Local {
			case "TransXChange":
				for _, attr := range ty.Attr {
					switch attr.Name.Local {
					case "CreationDateTime":
						transXChange.CreationDateTime = attr.Value
					case "ModificationDateTime":
						transXChange.ModificationDateTime = attr.Value
					case "SchemaVersion":
						transXChange.SchemaVersion = attr.Value
					}
				}

				if err := transXChange.Validate(); err != nil {
					return nil, &MalformedScheduleError{File: fileName, Path: "TransXChange", Err: err}
				}
			case "StopPoint":
				var stopPoint StopPoint
				if err := d.DecodeElement(&stopPoint, &ty); err != nil {
					return nil, &MalformedScheduleError{File: fileName, Path: "StopPoints>StopPoint", Err: err}
				}
				transXChange.StopPoints = append(transXChange.StopPoints, &stopPoint)
			case "AnnotatedStopPointRef":
				var stopPointRef AnnotatedStopPointRef
				if err := d.DecodeElement(&stopPointRef, &ty); err != nil {
					return nil, &MalformedScheduleError{File: fileName, Path: "StopPoints>AnnotatedStopPointRef", Err: err}
				}
				transXChange.AnnotatedStopPointRefs = append(transXChange.AnnotatedStopPointRefs, &stopPointRef)
			case "Operator", "LicensedOperator":
				var operator Operator
				if err := d.DecodeElement(&operator, &ty); err != nil {
					return nil, &MalformedScheduleError{File: fileName, Path: "Operators>Operator", Err: err}
				}
				transXChange.Operators = append(transXChange.Operators, &operator)
			case "Route":
				var route Route
				if err := d.DecodeElement(&route, &ty); err != nil {
					return nil, &MalformedScheduleError{File: fileName, Path: "Routes>Route", Err: err}
				}
				transXChange.Routes = append(transXChange.Routes, &route)
			case "RouteSection":
				var routeSection RouteSection
				if err := d.DecodeElement(&routeSection, &ty); err != nil {
					return nil, &MalformedScheduleError{File: fileName, Path: "RouteSections>RouteSection", Err: err}
				}
				transXChange.RouteSections = append(transXChange.RouteSections, &routeSection)
			case "Service":
				var service Service
				if err := d.DecodeElement(&service, &ty); err != nil {
					return nil, &MalformedScheduleError{File: fileName, Path: "Services>Service", Err: err}
				}
				transXChange.Services = append(transXChange.Services, &service)
			case "JourneyPatternSection":
				var jps JourneyPatternSection
				if err := d.DecodeElement(&jps, &ty); err != nil {
					return nil, &MalformedScheduleError{File: fileName, Path: "JourneyPatternSections>JourneyPatternSection", Err: err}
				}
				transXChange.JourneyPatternSections = append(transXChange.JourneyPatternSections, &jps)
			case "VehicleJourney":
				var vehicleJourney VehicleJourney
				if err := d.DecodeElement(&vehicleJourney, &ty); err != nil {
					return nil, &MalformedScheduleError{File: fileName, Path: "VehicleJourneys>VehicleJourney", Err: err}
				}
				transXChange.VehicleJourneys = append(transXChange.VehicleJourneys, &vehicleJourney)
			case "ServicedOrganisation":
				var org ServicedOrganisation
				if err := d.DecodeElement(&org, &ty); err != nil {
					return nil, &MalformedScheduleError{File: fileName, Path: "ServicedOrganisations>ServicedOrganisation", Err: err}
				}
				transXChange.ServicedOrganisations = append(transXChange.ServicedOrganisations, &org)
			}
		default:
		}
	}

	log.Debug().Str("file", fileName).
		Int("stops", len(transXChange.StopPoints)+len(transXChange.AnnotatedStopPointRefs)).
		Int("services", len(transXChange.Services)).
		Int("journeys", len(transXChange.VehicleJourneys)).
		Msg("Parsed document")

	return &transXChange, nil
}
