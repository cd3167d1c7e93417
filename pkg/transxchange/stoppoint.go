package transxchange

type StopPoint struct {
	CreationDateTime     string `xml:",attr"`
	ModificationDateTime string `xml:",attr"`
	Status               string `xml:",attr"`

	AtcoCode   string
	NaptanCode string

	Descriptor StopPointDescriptor

	Location *Location `xml:"Place>Location"`

	StopType string `xml:"StopClassification>StopType"`
}

type StopPointDescriptor struct {
	CommonName      string
	ShortCommonName string
	Landmark        string
	Street          string
	Indicator       string
}

// AnnotatedStopPointRef is the lightweight stop declaration used by schema
// 2.1 documents, and occasionally alongside full StopPoints in 2.4 ones.
type AnnotatedStopPointRef struct {
	StopPointRef string
	CommonName   string

	Location *Location
}

type Location struct {
	LocationInner

	Translation LocationInner
}

type LocationInner struct {
	GridType string
	Easting  string
	Northing string

	Longitude float64
	Latitude  float64
}

// HasWGS84 reports whether the source already carries resolved coordinates,
// in which case grid reprojection is skipped.
func (l *Location) HasWGS84() bool {
	if l == nil {
		return false
	}

	return (l.Longitude != 0 || l.Latitude != 0) ||
		(l.Translation.Longitude != 0 || l.Translation.Latitude != 0)
}

// WGS84 returns the resolved latitude/longitude, preferring the direct
// values over the Translation block.
func (l *Location) WGS84() (float64, float64) {
	if l.Longitude != 0 || l.Latitude != 0 {
		return l.Latitude, l.Longitude
	}

	return l.Translation.Latitude, l.Translation.Longitude
}

// GridReference returns the easting/northing pair, preferring the direct
// values over the Translation block.
func (l *Location) GridReference() (string, string) {
	if l == nil {
		return "", ""
	}

	if l.Easting != "" && l.Northing != "" {
		return l.Easting, l.Northing
	}

	return l.Translation.Easting, l.Translation.Northing
}
