package converter

import "fmt"

type WarningKind string

const (
	WarningDanglingReference         WarningKind = "DanglingReference"
	WarningInvalidCoordinate         WarningKind = "InvalidCoordinate"
	WarningConflictingStopDefinition WarningKind = "ConflictingStopDefinition"
	WarningNeverOperates             WarningKind = "NeverOperates"
	WarningUnresolvableJourney       WarningKind = "UnresolvableJourney"
)

// Warning records one recovered per-entity problem with enough context to
// trace it back to its source file. No dropped entity goes unreported.
type Warning struct {
	Kind   WarningKind
	File   string
	Entity string
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s %s: %s", w.Kind, w.File, w.Entity, w.Detail)
}
