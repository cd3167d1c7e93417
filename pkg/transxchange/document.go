package transxchange

import (
	"errors"
	"fmt"
)

const DateTimeFormat = "2006-01-02T15:04:05"
const YearMonthDayFormat = "2006-01-02"

type TransXChange struct {
	CreationDateTime     string `xml:",attr"`
	ModificationDateTime string `xml:",attr"`
	SchemaVersion        string `xml:",attr"`

	// FileName is the source the document was read from, carried through so
	// warnings can be traced back to a file.
	FileName string

	StopPoints             []*StopPoint
	AnnotatedStopPointRefs []*AnnotatedStopPointRef

	Operators              []*Operator
	Routes                 []*Route
	RouteSections          []*RouteSection
	Services               []*Service
	JourneyPatternSections []*JourneyPatternSection
	VehicleJourneys        []*VehicleJourney
	ServicedOrganisations  []*ServicedOrganisation
}

func (doc *TransXChange) Validate() error {
	if doc.CreationDateTime == "" {
		return errors.New("CreationDateTime must be set")
	}
	if doc.ModificationDateTime == "" {
		return errors.New("ModificationDateTime must be set")
	}
	if !(doc.SchemaVersion == "2.1" || doc.SchemaVersion == "2.4") {
		return errors.New("SchemaVersion must be 2.1 or 2.4")
	}

	return nil
}

func (doc *TransXChange) FindServicedOrganisation(code string) *ServicedOrganisation {
	for _, org := range doc.ServicedOrganisations {
		if org.OrganisationCode == code {
			return org
		}
	}

	return nil
}

// MalformedScheduleError reports a structurally invalid source document. It
// is fatal for the file it names.
type MalformedScheduleError struct {
	File string
	Path string
	Err  error
}

func (e *MalformedScheduleError) Error() string {
	return fmt.Sprintf("malformed schedule %s at %s: %s", e.File, e.Path, e.Err)
}

func (e *MalformedScheduleError) Unwrap() error {
	return e.Err
}
