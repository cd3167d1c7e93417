package bankholidays

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"
)

const dateFormat = "2006-01-02"

// Table maps a TransXChange bank holiday element name (eg. "GoodFriday") to
// the concrete dates it denotes for the years covered by the feed. It is
// built once per conversion run and is read-only afterwards.
type Table map[string][]time.Time

// The gov.uk bank-holidays.json document: divisions keyed by region, each
// carrying a list of dated events.
type govUKDocument map[string]struct {
	Division string `json:"division"`
	Events   []struct {
		Title   string `json:"title"`
		Date    string `json:"date"`
		Notes   string `json:"notes"`
		Bunting bool   `json:"bunting"`
	} `json:"events"`
}

// Event titles as published on gov.uk mapped to their TransXChange element
// names. The summer bank holiday falls on different dates in Scotland and is
// handled separately per division.
var titleNames = map[string]string{
	"New Year's Day":         "NewYearsDay",
	"2nd January":            "Jan2ndScotland",
	"Good Friday":            "GoodFriday",
	"Easter Monday":          "EasterMonday",
	"Early May bank holiday": "MayDay",
	"Spring bank holiday":    "SpringBank",
	"St Andrew's Day":        "StAndrewsDay",
	"Christmas Day":          "ChristmasDay",
	"Boxing Day":             "BoxingDay",
}

// Holiday group element names and their members.
var groupNames = map[string][]string{
	"Christmas": {"ChristmasDay", "BoxingDay"},
	"DisplacementHolidays": {
		"ChristmasDayHoliday", "BoxingDayHoliday", "NewYearsDayHoliday", "Jan2ndScotlandHoliday",
	},
	"HolidayMondays": {
		"EasterMonday", "MayDay", "SpringBank",
		"LateSummerBankHolidayNotScotland", "AugustBankHolidayScotland",
	},
	"AllHolidaysExceptChristmas": {
		"NewYearsDay", "Jan2ndScotland", "GoodFriday", "EasterMonday", "MayDay",
		"SpringBank", "LateSummerBankHolidayNotScotland", "AugustBankHolidayScotland",
		"StAndrewsDay",
	},
	"EarlyRunOffDays": {"ChristmasEve", "NewYearsEve"},
}

// Load parses a gov.uk format bank-holidays.json document into a Table. All
// divisions are merged; region specific holidays only appear under their own
// element names so merging is safe.
func Load(reader io.Reader) (Table, error) {
	var document govUKDocument

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("failed to parse bank holidays document: %w", err)
	}

	table := Table{}
	years := map[int]bool{}

	for division, divisionData := range document {
		for _, event := range divisionData.Events {
			date, err := time.Parse(dateFormat, event.Date)
			if err != nil {
				return nil, fmt.Errorf("invalid bank holiday date %q: %w", event.Date, err)
			}

			name := elementName(division, event.Title)
			if name == "" {
				log.Debug().Str("title", event.Title).Msg("Unrecognised bank holiday")
				continue
			}

			table.add(name, date)
			years[date.Year()] = true
		}
	}

	// Christmas Eve and New Year's Eve are TransXChange concepts that never
	// appear in the gov.uk data; derive them for every covered year.
	for year := range years {
		table.add("ChristmasEve", time.Date(year, time.December, 24, 0, 0, 0, 0, time.UTC))
		table.add("NewYearsEve", time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC))
	}

	return table, nil
}

func elementName(division string, title string) string {
	substitute := strings.Contains(title, "(substitute day)")

	title = strings.ReplaceAll(title, "’", "'")
	title = strings.TrimSpace(strings.ReplaceAll(title, "(substitute day)", ""))

	if title == "Summer bank holiday" {
		if division == "scotland" {
			return "AugustBankHolidayScotland"
		}
		return "LateSummerBankHolidayNotScotland"
	}

	name := titleNames[title]
	if name == "" {
		return ""
	}

	// Substitute days have their own TransXChange names, eg. a Christmas Day
	// falling on a weekend is observed as ChristmasDayHoliday.
	if substitute {
		name = name + "Holiday"
	}

	return name
}

func (t Table) add(name string, date time.Time) {
	for _, existing := range t[name] {
		if existing.Equal(date) {
			return
		}
	}

	t[name] = append(t[name], date)
}

// Dates resolves a TransXChange holiday element name, expanding group names
// such as AllBankHolidays. Unknown names resolve to no dates.
func (t Table) Dates(name string) []time.Time {
	if name == "AllBankHolidays" {
		// The early run off days are derived eves, not bank holidays; they
		// only resolve through their own names and group.
		skip := map[string]bool{}
		for _, member := range groupNames["EarlyRunOffDays"] {
			skip[member] = true
		}

		var all []time.Time
		for _, holidayName := range maps.Keys(t) {
			if skip[holidayName] {
				continue
			}
			all = append(all, t[holidayName]...)
		}
		sortDates(all)
		return all
	}

	if members, ok := groupNames[name]; ok {
		var dates []time.Time
		for _, member := range members {
			dates = append(dates, t[member]...)
		}
		sortDates(dates)
		return dates
	}

	return t[name]
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
}
