package bankholidays

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGovUK = `{
	"england-and-wales": {
		"division": "england-and-wales",
		"events": [
			{"title": "New Year’s Day", "date": "2025-01-01", "notes": "", "bunting": true},
			{"title": "Good Friday", "date": "2025-04-18", "notes": "", "bunting": false},
			{"title": "Summer bank holiday", "date": "2025-08-25", "notes": "", "bunting": true},
			{"title": "Christmas Day", "date": "2025-12-25", "notes": "", "bunting": true},
			{"title": "Boxing Day (substitute day)", "date": "2026-12-28", "notes": "Substitute day", "bunting": true}
		]
	},
	"scotland": {
		"division": "scotland",
		"events": [
			{"title": "New Year’s Day", "date": "2025-01-01", "notes": "", "bunting": true},
			{"title": "2nd January", "date": "2025-01-02", "notes": "", "bunting": true},
			{"title": "Summer bank holiday", "date": "2025-08-04", "notes": "", "bunting": true},
			{"title": "St Andrew’s Day", "date": "2025-12-01", "notes": "", "bunting": true}
		]
	}
}`

func mustDate(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}

	return parsed
}

func TestLoad(t *testing.T) {
	table, err := Load(strings.NewReader(sampleGovUK))
	require.NoError(t, err)

	assert.Equal(t, []time.Time{mustDate("2025-04-18")}, table.Dates("GoodFriday"))

	// The same date in two divisions is recorded once.
	assert.Equal(t, []time.Time{mustDate("2025-01-01")}, table.Dates("NewYearsDay"))

	// The summer bank holiday splits by division.
	assert.Equal(t, []time.Time{mustDate("2025-08-25")}, table.Dates("LateSummerBankHolidayNotScotland"))
	assert.Equal(t, []time.Time{mustDate("2025-08-04")}, table.Dates("AugustBankHolidayScotland"))

	// Substitute days get their own element name.
	assert.Equal(t, []time.Time{mustDate("2026-12-28")}, table.Dates("BoxingDayHoliday"))
	assert.Equal(t, []time.Time{mustDate("2025-12-25")}, table.Dates("ChristmasDay"))

	assert.Equal(t, []time.Time{mustDate("2025-12-01")}, table.Dates("StAndrewsDay"))
}

func TestLoadDerivesEves(t *testing.T) {
	table, err := Load(strings.NewReader(sampleGovUK))
	require.NoError(t, err)

	assert.Contains(t, table.Dates("ChristmasEve"), mustDate("2025-12-24"))
	assert.Contains(t, table.Dates("NewYearsEve"), mustDate("2025-12-31"))
	assert.Contains(t, table.Dates("ChristmasEve"), mustDate("2026-12-24"))
}

func TestDatesGroups(t *testing.T) {
	table, err := Load(strings.NewReader(sampleGovUK))
	require.NoError(t, err)

	christmas := table.Dates("Christmas")
	assert.Contains(t, christmas, mustDate("2025-12-25"))

	mondays := table.Dates("HolidayMondays")
	assert.Contains(t, mondays, mustDate("2025-08-25"))
	assert.Contains(t, mondays, mustDate("2025-08-04"))

	displacement := table.Dates("DisplacementHolidays")
	assert.Equal(t, []time.Time{mustDate("2026-12-28")}, displacement)
}

func TestDatesAllBankHolidays(t *testing.T) {
	table, err := Load(strings.NewReader(sampleGovUK))
	require.NoError(t, err)

	all := table.Dates("AllBankHolidays")
	assert.Contains(t, all, mustDate("2025-01-01"))
	assert.Contains(t, all, mustDate("2025-04-18"))
	assert.Contains(t, all, mustDate("2025-12-25"))

	// The derived eves are early run off days, not bank holidays: a service
	// suspended on AllBankHolidays still runs on Dec 24 and Dec 31.
	assert.NotContains(t, all, mustDate("2025-12-24"))
	assert.NotContains(t, all, mustDate("2025-12-31"))
	assert.NotContains(t, all, mustDate("2026-12-24"))
	assert.Contains(t, table.Dates("EarlyRunOffDays"), mustDate("2025-12-24"))

	// Sorted ascending.
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Before(all[i-1]))
	}
}

func TestDatesUnknownName(t *testing.T) {
	table, err := Load(strings.NewReader(sampleGovUK))
	require.NoError(t, err)

	assert.Empty(t, table.Dates("NotAHoliday"))
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	_, err := Load(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestLoadSnapshot(t *testing.T) {
	table, err := LoadSnapshot()
	require.NoError(t, err)

	assert.NotEmpty(t, table.Dates("ChristmasDay"))
	assert.NotEmpty(t, table.Dates("GoodFriday"))
	assert.NotEmpty(t, table.Dates("AllBankHolidays"))
}
