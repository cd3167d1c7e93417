package transxchange

import (
	"encoding/xml"
	"io"
	"strings"
)

// OperatingProfile captures the rule set deciding which dates a service or
// vehicle journey runs on. The element mixes lists of marker elements
// (weekday and bank holiday names) with nested structures, so we keep the
// raw inner XML and re-parse it with a token walk.
type OperatingProfile struct {
	XMLValue string `xml:",innerxml" json:"-" yaml:"-"`

	RegularDays  []string
	HolidaysOnly bool

	BankHolidaysOperation    []string
	BankHolidaysNonOperation []string

	// Inline OtherPublicHoliday dates (YYYY-MM-DD), which behave like
	// explicit date exceptions rather than named holidays.
	OtherDatesOperation    []string
	OtherDatesNonOperation []string

	ServicedOrganisationOperation    []ServicedOrganisationDayRule
	ServicedOrganisationNonOperation []ServicedOrganisationDayRule

	SpecialDaysOperation    []DateRange
	SpecialDaysNonOperation []DateRange
}

// ServicedOrganisationDayRule gates operation on the working days or the
// holidays of a referenced serviced organisation.
type ServicedOrganisationDayRule struct {
	OrganisationRef string
	Holidays        bool
}

// IsDefined reports whether the source document carried a profile at all.
func (p *OperatingProfile) IsDefined() bool {
	return strings.TrimSpace(p.XMLValue) != ""
}

type otherPublicHoliday struct {
	Description string
	Date        string
}

type servicedOrganisationDayType struct {
	WorkingDays struct {
		Refs []string `xml:"ServicedOrganisationRef"`
	}
	Holidays struct {
		Refs []string `xml:"ServicedOrganisationRef"`
	}
}

// Parse walks the inner XML and fills in the structured fields. It is safe
// to call on an empty profile.
func (p *OperatingProfile) Parse() error {
	p.RegularDays = nil
	p.HolidaysOnly = false
	p.BankHolidaysOperation = nil
	p.BankHolidaysNonOperation = nil
	p.OtherDatesOperation = nil
	p.OtherDatesNonOperation = nil
	p.ServicedOrganisationOperation = nil
	p.ServicedOrganisationNonOperation = nil
	p.SpecialDaysOperation = nil
	p.SpecialDaysNonOperation = nil

	if !p.IsDefined() {
		return nil
	}

	var elementChain []string

	d := xml.NewDecoder(strings.NewReader(p.XMLValue))
	for {
		tok, err := d.Token()
		if tok == nil || err == io.EOF {
			break
		} else if err != nil {
			return err
		}

		switch ty := tok.(type) {
		case xml.StartElement:
			name := ty.Name.Local

			// Nested structures are decoded whole; DecodeElement consumes
			// the matching EndElement so they must not join the chain.
			if len(elementChain) == 2 {
				operation := elementChain[1] == "DaysOfOperation"

				switch {
				case elementChain[0] == "BankHolidayOperation" && name == "OtherPublicHoliday":
					var holiday otherPublicHoliday
					if err := d.DecodeElement(&holiday, &ty); err != nil {
						return err
					}
					if operation {
						p.OtherDatesOperation = append(p.OtherDatesOperation, holiday.Date)
					} else {
						p.OtherDatesNonOperation = append(p.OtherDatesNonOperation, holiday.Date)
					}
					continue
				case elementChain[0] == "SpecialDaysOperation" && name == "DateRange":
					var dateRange DateRange
					if err := d.DecodeElement(&dateRange, &ty); err != nil {
						return err
					}
					if operation {
						p.SpecialDaysOperation = append(p.SpecialDaysOperation, dateRange)
					} else {
						p.SpecialDaysNonOperation = append(p.SpecialDaysNonOperation, dateRange)
					}
					continue
				}
			}

			if len(elementChain) == 1 && elementChain[0] == "ServicedOrganisationDayType" &&
				(name == "DaysOfOperation" || name == "DaysOfNonOperation") {
				var dayType servicedOrganisationDayType
				if err := d.DecodeElement(&dayType, &ty); err != nil {
					return err
				}

				var rules []ServicedOrganisationDayRule
				for _, ref := range dayType.WorkingDays.Refs {
					rules = append(rules, ServicedOrganisationDayRule{OrganisationRef: ref})
				}
				for _, ref := range dayType.Holidays.Refs {
					rules = append(rules, ServicedOrganisationDayRule{OrganisationRef: ref, Holidays: true})
				}

				if name == "DaysOfOperation" {
					p.ServicedOrganisationOperation = append(p.ServicedOrganisationOperation, rules...)
				} else {
					p.ServicedOrganisationNonOperation = append(p.ServicedOrganisationNonOperation, rules...)
				}
				continue
			}

			elementChain = append(elementChain, name)

			switch elementChain[0] {
			case "RegularDayType":
				if len(elementChain) == 2 && elementChain[1] == "HolidaysOnly" {
					p.HolidaysOnly = true
				}
				if len(elementChain) == 3 && elementChain[1] == "DaysOfWeek" {
					p.RegularDays = append(p.RegularDays, elementChain[2])
				}
			case "BankHolidayOperation":
				if len(elementChain) == 3 &&
					(elementChain[1] == "DaysOfOperation" || elementChain[1] == "DaysOfNonOperation") {
					if elementChain[1] == "DaysOfOperation" {
						p.BankHolidaysOperation = append(p.BankHolidaysOperation, elementChain[2])
					} else {
						p.BankHolidaysNonOperation = append(p.BankHolidaysNonOperation, elementChain[2])
					}
				}
			}
		case xml.EndElement:
			if len(elementChain) > 0 {
				elementChain = elementChain[:len(elementChain)-1]
			}
		}
	}

	return nil
}
