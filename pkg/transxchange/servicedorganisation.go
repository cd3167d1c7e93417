package transxchange

type ServicedOrganisation struct {
	ServicedOrganisationClassification string
	NatureOfOrganisation               string
	PhaseOfEducation                   string

	OrganisationCode string
	Name             string
	Note             string

	WorkingDays DatePattern
	Holidays    DatePattern

	ParentServicedOrganisationRef string
}

type DatePattern struct {
	DateRange   []DateRange
	Description string

	DateExclusion []string
}
