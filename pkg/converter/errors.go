package converter

import "fmt"

// DanglingReferenceError reports a vehicle journey whose timing links
// reference a stop absent from the consolidated stop table. The journey is
// dropped and the conversion continues.
type DanglingReferenceError struct {
	File    string
	Journey string
	StopRef string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("journey %s in %s references unknown stop %s", e.Journey, e.File, e.StopRef)
}

// InvalidCoordinateError reports a stop whose grid reference could not be
// reprojected to WGS84. The stop and the trips depending on it are dropped.
type InvalidCoordinateError struct {
	File string
	Stop string
	Err  error
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("stop %s in %s has an invalid coordinate: %s", e.Stop, e.File, e.Err)
}

func (e *InvalidCoordinateError) Unwrap() error {
	return e.Err
}

// FeedConflictError reports the same route identifier meaning two different
// real world entities in two source files. Silently merging them would
// corrupt downstream consumers, so this aborts the whole run.
type FeedConflictError struct {
	Identifier string
	FileA      string
	FileB      string
	Detail     string
}

func (e *FeedConflictError) Error() string {
	return fmt.Sprintf("identifier %s means different entities in %s and %s: %s",
		e.Identifier, e.FileA, e.FileB, e.Detail)
}
