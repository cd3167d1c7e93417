package transxchange

type Operator struct {
	ID                   string `xml:"id,attr"`
	CreationDateTime     string `xml:",attr"`
	ModificationDateTime string `xml:",attr"`

	NationalOperatorCode  string
	OperatorCode          string
	OperatorShortName     string
	OperatorNameOnLicence string
	TradingName           string
	LicenceNumber         string
}

// Code returns the most specific operator code available. National Operator
// Codes are preferred as they are the only codes unique across documents.
func (o *Operator) Code() string {
	if o.NationalOperatorCode != "" {
		return o.NationalOperatorCode
	}

	return o.OperatorCode
}

// Name returns the best human readable name for the operator.
func (o *Operator) Name() string {
	if o.TradingName != "" {
		return o.TradingName
	}
	if o.OperatorShortName != "" {
		return o.OperatorShortName
	}

	return o.OperatorNameOnLicence
}
