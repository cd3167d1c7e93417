package converter

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	iso8601 "github.com/senseyeio/duration"

	"github.com/txc2gtfs/txc2gtfs/pkg/transxchange"
)

// stopTimeEvent is one (stop, arrival offset, departure offset) tuple of an
// expanded journey. Offsets are seconds since midnight.
type stopTimeEvent struct {
	StopRef   string
	Arrival   int
	Departure int
	Pickup    int8
	DropOff   int8
	Timepoint int8
}

// expandVehicleJourney walks the journey pattern's sections in order,
// advancing a running clock from the journey's departure time by each timing
// link's run time and wait times. Vehicle journey timing links override the
// pattern's run and wait times where present.
func expandVehicleJourney(
	journey *transxchange.VehicleJourney,
	pattern *transxchange.JourneyPattern,
	sections map[string]*transxchange.JourneyPatternSection,
) ([]stopTimeEvent, error) {
	cursor, err := parseTimeOfDay(journey.DepartureTime)
	if err != nil {
		return nil, fmt.Errorf("departure time: %w", err)
	}

	var events []stopTimeEvent

	for _, sectionRef := range pattern.JourneyPatternSectionRefs {
		section := sections[sectionRef]
		if section == nil {
			return nil, fmt.Errorf("unknown journey pattern section %q", sectionRef)
		}

		for _, patternLink := range section.JourneyPatternTimingLinks {
			journeyLink := journey.GetVehicleJourneyTimingLinkByJourneyPatternTimingLinkRef(patternLink.ID)

			from := patternLink.From
			to := patternLink.To
			runTime := patternLink.RunTime

			if journeyLink != nil {
				if journeyLink.RunTime != "" {
					runTime = journeyLink.RunTime
				}
				if journeyLink.From.WaitTime != "" {
					from.WaitTime = journeyLink.From.WaitTime
				}
				if journeyLink.From.Activity != "" {
					from.Activity = journeyLink.From.Activity
				}
				if journeyLink.To.WaitTime != "" {
					to.WaitTime = journeyLink.To.WaitTime
				}
				if journeyLink.To.Activity != "" {
					to.Activity = journeyLink.To.Activity
				}
			}

			if len(events) == 0 {
				pickup, _ := activityTypes(from.Activity)
				events = append(events, stopTimeEvent{
					StopRef:   from.StopPointRef,
					Arrival:   cursor,
					Departure: cursor,
					Pickup:    pickup,
					Timepoint: timepoint(from.TimingStatus),
				})
			}

			// A wait at the origin stop delays this link's departure.
			fromWait, err := parseISODuration(from.WaitTime)
			if err != nil {
				return nil, fmt.Errorf("timing link %s: %w", patternLink.ID, err)
			}
			cursor += fromWait
			events[len(events)-1].Departure = cursor

			run, err := parseISODuration(runTime)
			if err != nil {
				return nil, fmt.Errorf("timing link %s: %w", patternLink.ID, err)
			}
			if run < 0 {
				return nil, fmt.Errorf("timing link %s has a negative run time", patternLink.ID)
			}
			cursor += run
			arrival := cursor

			toWait, err := parseISODuration(to.WaitTime)
			if err != nil {
				return nil, fmt.Errorf("timing link %s: %w", patternLink.ID, err)
			}
			cursor += toWait

			pickup, dropOff := activityTypes(to.Activity)
			events = append(events, stopTimeEvent{
				StopRef:   to.StopPointRef,
				Arrival:   arrival,
				Departure: cursor,
				Pickup:    pickup,
				DropOff:   dropOff,
				Timepoint: timepoint(to.TimingStatus),
			})
		}
	}

	if len(events) < 2 {
		return nil, fmt.Errorf("journey does not include a sequence of stops")
	}

	// No wait is recorded past the final stop.
	events[len(events)-1].Departure = events[len(events)-1].Arrival

	return events, nil
}

func activityTypes(activity string) (pickup int8, dropOff int8) {
	switch activity {
	case "pickUp":
		return 0, 1
	case "setDown":
		return 1, 0
	case "pass":
		return 1, 1
	default: // pickUpAndSetDown
		return 0, 0
	}
}

func timepoint(timingStatus string) int8 {
	if timingStatus == "PTP" || timingStatus == "principalTimingPoint" {
		return 1
	}

	return 0
}

// materialiseFrequencies returns the document's journeys with each frequency
// based journey followed by one copy per headway step, up to and including
// the end time, so every repetition becomes an independent trip. The source
// document is left untouched.
func materialiseFrequencies(doc *transxchange.TransXChange) ([]*transxchange.VehicleJourney, []Warning) {
	journeys := make([]*transxchange.VehicleJourney, 0, len(doc.VehicleJourneys))
	var warnings []Warning

	for _, journey := range doc.VehicleJourneys {
		journeys = append(journeys, journey)

		if journey.Frequency == nil || journey.Frequency.Interval == nil {
			continue
		}

		departureTime, err := time.Parse(timeOfDayFormat, journey.DepartureTime)
		if err != nil {
			warnings = append(warnings, frequencyWarning(doc, journey, fmt.Sprintf("invalid departure time %q", journey.DepartureTime)))
			continue
		}
		endTime, err := time.Parse(timeOfDayFormat, journey.Frequency.EndTime)
		if err != nil {
			warnings = append(warnings, frequencyWarning(doc, journey, fmt.Sprintf("invalid frequency end time %q", journey.Frequency.EndTime)))
			continue
		}
		interval, err := iso8601.ParseISO8601(journey.Frequency.Interval.ScheduledFrequency)
		if err != nil {
			warnings = append(warnings, frequencyWarning(doc, journey, fmt.Sprintf("invalid headway %q", journey.Frequency.Interval.ScheduledFrequency)))
			continue
		}
		if !interval.Shift(departureTime).After(departureTime) {
			warnings = append(warnings, frequencyWarning(doc, journey, "headway does not advance"))
			continue
		}

		for newDepartureTime := interval.Shift(departureTime); !newDepartureTime.After(endTime); newDepartureTime = interval.Shift(newDepartureTime) {
			var copiedJourney transxchange.VehicleJourney
			err := copier.CopyWithOption(&copiedJourney, *journey, copier.Option{IgnoreEmpty: true, DeepCopy: true})
			if err != nil {
				warnings = append(warnings, frequencyWarning(doc, journey, fmt.Sprintf("failed to copy journey: %s", err)))
				break
			}

			copiedJourney.DepartureTime = newDepartureTime.Format(timeOfDayFormat)
			copiedJourney.VehicleJourneyCode = fmt.Sprintf("%s-%s", journey.VehicleJourneyCode, copiedJourney.DepartureTime)
			copiedJourney.Frequency = nil

			journeys = append(journeys, &copiedJourney)
		}
	}

	return journeys, warnings
}

func frequencyWarning(doc *transxchange.TransXChange, journey *transxchange.VehicleJourney, detail string) Warning {
	return Warning{
		Kind:   WarningUnresolvableJourney,
		File:   doc.FileName,
		Entity: journey.VehicleJourneyCode,
		Detail: detail,
	}
}
