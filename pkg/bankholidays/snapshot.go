package bankholidays

import (
	"bytes"
	_ "embed"
)

// A snapshot of https://www.gov.uk/bank-holidays.json is bundled so that
// conversions still work offline. It only covers a few years, so callers
// should prefer a freshly supplied document where one is available.
//
//go:embed data/bank-holidays.json
var snapshot []byte

// LoadSnapshot builds a Table from the bundled gov.uk snapshot.
func LoadSnapshot() (Table, error) {
	return Load(bytes.NewReader(snapshot))
}
