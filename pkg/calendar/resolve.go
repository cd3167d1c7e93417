package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/txc2gtfs/txc2gtfs/pkg/bankholidays"
	"github.com/txc2gtfs/txc2gtfs/pkg/transxchange"
)

var weekdayIndexes = map[string]int{
	"Monday":    0,
	"Tuesday":   1,
	"Wednesday": 2,
	"Thursday":  3,
	"Friday":    4,
	"Saturday":  5,
	"Sunday":    6,
}

// Resolve turns an operating profile plus the owning service's validity
// range into a concrete Calendar. The precedence of the override layers is,
// from weakest to strongest: weekly day pattern, bank holiday policy,
// serviced organisation rules, explicit date exceptions. Later layers
// overwrite earlier ones per date; exceptions are only emitted where an
// override disagrees with the weekly default.
func Resolve(
	profile *transxchange.OperatingProfile,
	period transxchange.DateRange,
	holidays bankholidays.Table,
	document *transxchange.TransXChange,
) (*Calendar, error) {
	startDate, endDate, err := parsePeriod(period)
	if err != nil {
		return nil, err
	}

	days, err := ParseDays(profile.RegularDays)
	if err != nil {
		return nil, err
	}

	// An absent profile means the journey runs every day of the operating
	// period; a present profile with HolidaysOnly (or an empty day list)
	// runs on no regular days at all.
	if !profile.IsDefined() {
		for i := range days {
			days[i] = true
		}
	}
	if profile.HolidaysOnly {
		days = [7]bool{}
	}

	overrides := newOverrideSet(startDate, endDate)

	// Layer 1: bank holiday policy. Operation first, so that an explicit
	// non-operation of the same holiday wins within the layer.
	for _, name := range profile.BankHolidaysOperation {
		overrides.setAll(holidays.Dates(name), true)
	}
	if profile.HolidaysOnly {
		overrides.setAll(holidays.Dates("AllBankHolidays"), true)
	}
	for _, name := range profile.BankHolidaysNonOperation {
		overrides.setAll(holidays.Dates(name), false)
	}

	// Layer 2: serviced organisation day rules.
	for _, rule := range profile.ServicedOrganisationOperation {
		dates, err := organisationDates(rule, document, startDate, endDate)
		if err != nil {
			return nil, err
		}
		overrides.setAll(dates, true)
	}
	for _, rule := range profile.ServicedOrganisationNonOperation {
		dates, err := organisationDates(rule, document, startDate, endDate)
		if err != nil {
			return nil, err
		}
		overrides.setAll(dates, false)
	}

	// Layer 3: explicit date exceptions take precedence over everything.
	for _, dateRange := range profile.SpecialDaysOperation {
		dates, err := expandDateRange(dateRange, startDate, endDate)
		if err != nil {
			return nil, err
		}
		overrides.setAll(dates, true)
	}
	for _, date := range profile.OtherDatesOperation {
		if err := overrides.setString(date, true); err != nil {
			return nil, err
		}
	}
	for _, dateRange := range profile.SpecialDaysNonOperation {
		dates, err := expandDateRange(dateRange, startDate, endDate)
		if err != nil {
			return nil, err
		}
		overrides.setAll(dates, false)
	}
	for _, date := range profile.OtherDatesNonOperation {
		if err := overrides.setString(date, false); err != nil {
			return nil, err
		}
	}

	resolved := &Calendar{
		Days:      days,
		StartDate: startDate,
		EndDate:   endDate,
	}

	for date, operates := range overrides.dates {
		if operates == days[WeekdayIndex(date)] {
			continue
		}

		if operates {
			resolved.Additions = append(resolved.Additions, date)
		} else {
			resolved.Removals = append(resolved.Removals, date)
		}
	}

	sortDates(resolved.Additions)
	sortDates(resolved.Removals)

	return resolved, nil
}

// ParseDays converts TransXChange DaysOfWeek element names into a
// Monday-first day set. Supports single days, Weekend, and generic
// day-to-day ranges such as MondayToFriday.
func ParseDays(names []string) ([7]bool, error) {
	var days [7]bool

	for _, name := range names {
		switch {
		case name == "Weekend":
			days[5] = true
			days[6] = true
		case strings.Contains(name, "To"):
			parts := strings.SplitN(name, "To", 2)
			start, startKnown := weekdayIndexes[parts[0]]
			end, endKnown := weekdayIndexes[parts[1]]
			if !startKnown || !endKnown || end < start {
				return days, fmt.Errorf("unrecognised day range %q", name)
			}
			for i := start; i <= end; i++ {
				days[i] = true
			}
		default:
			index, known := weekdayIndexes[name]
			if !known {
				return days, fmt.Errorf("unrecognised day of week %q", name)
			}
			days[index] = true
		}
	}

	return days, nil
}

func parsePeriod(period transxchange.DateRange) (time.Time, time.Time, error) {
	if period.StartDate == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("operating period has no start date")
	}

	startDate, err := time.Parse(transxchange.YearMonthDayFormat, period.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid operating period start %q: %w", period.StartDate, err)
	}

	// An open ended operating period is clamped to a year past its start so
	// the produced feed stays finite.
	endDate := startDate.AddDate(1, 0, 0)
	if period.EndDate != "" {
		endDate, err = time.Parse(transxchange.YearMonthDayFormat, period.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid operating period end %q: %w", period.EndDate, err)
		}
	}

	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("operating period ends %s before it starts %s", period.EndDate, period.StartDate)
	}

	return DateOnly(startDate), DateOnly(endDate), nil
}

func organisationDates(
	rule transxchange.ServicedOrganisationDayRule,
	document *transxchange.TransXChange,
	startDate time.Time,
	endDate time.Time,
) ([]time.Time, error) {
	organisation := document.FindServicedOrganisation(rule.OrganisationRef)
	if organisation == nil {
		return nil, fmt.Errorf("unknown serviced organisation %q", rule.OrganisationRef)
	}

	pattern := organisation.WorkingDays
	if rule.Holidays {
		pattern = organisation.Holidays
	}

	var dates []time.Time
	for _, dateRange := range pattern.DateRange {
		expanded, err := expandDateRange(dateRange, startDate, endDate)
		if err != nil {
			return nil, fmt.Errorf("serviced organisation %q: %w", rule.OrganisationRef, err)
		}
		dates = append(dates, expanded...)
	}

	return dates, nil
}

// expandDateRange lists every date of a range clamped to the validity
// period. Open ends clamp to the period bounds.
func expandDateRange(dateRange transxchange.DateRange, startDate time.Time, endDate time.Time) ([]time.Time, error) {
	rangeStart := startDate
	rangeEnd := endDate

	if dateRange.StartDate != "" {
		parsed, err := time.Parse(transxchange.YearMonthDayFormat, dateRange.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid date range start %q: %w", dateRange.StartDate, err)
		}
		rangeStart = DateOnly(parsed)
	}
	if dateRange.EndDate != "" {
		parsed, err := time.Parse(transxchange.YearMonthDayFormat, dateRange.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid date range end %q: %w", dateRange.EndDate, err)
		}
		rangeEnd = DateOnly(parsed)
	}

	if rangeStart.Before(startDate) {
		rangeStart = startDate
	}
	if rangeEnd.After(endDate) {
		rangeEnd = endDate
	}

	var dates []time.Time
	for date := rangeStart; !date.After(rangeEnd); date = date.AddDate(0, 0, 1) {
		dates = append(dates, date)
	}

	return dates, nil
}

type overrideSet struct {
	dates map[time.Time]bool

	startDate time.Time
	endDate   time.Time
}

func newOverrideSet(startDate time.Time, endDate time.Time) *overrideSet {
	return &overrideSet{
		dates:     map[time.Time]bool{},
		startDate: startDate,
		endDate:   endDate,
	}
}

func (s *overrideSet) set(date time.Time, operates bool) {
	date = DateOnly(date)

	if date.Before(s.startDate) || date.After(s.endDate) {
		return
	}

	s.dates[date] = operates
}

func (s *overrideSet) setAll(dates []time.Time, operates bool) {
	for _, date := range dates {
		s.set(date, operates)
	}
}

func (s *overrideSet) setString(date string, operates bool) error {
	parsed, err := time.Parse(transxchange.YearMonthDayFormat, date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}

	s.set(parsed, operates)

	return nil
}
