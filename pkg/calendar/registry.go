package calendar

import "fmt"

// Registry deduplicates resolved calendars by structural equality and hands
// out the shared GTFS service identifiers. Registration order decides the
// identifiers, so callers must register in a deterministic order to keep
// repeated runs byte-identical; the consolidator is single threaded and
// processes files in sorted name order, which satisfies that.
type Registry struct {
	ids       map[string]string
	calendars []*Calendar
	ordered   []string
}

func NewRegistry() *Registry {
	return &Registry{
		ids: map[string]string{},
	}
}

// Register returns the service identifier for a calendar, allocating a new
// one on first sight of its structural key.
func (r *Registry) Register(c *Calendar) string {
	key := c.Key()

	if id, exists := r.ids[key]; exists {
		return id
	}

	id := serviceID(len(r.calendars) + 1)
	r.ids[key] = id
	r.calendars = append(r.calendars, c)
	r.ordered = append(r.ordered, id)

	return id
}

// All returns the registered calendars with their identifiers, in
// registration order.
func (r *Registry) All() ([]string, []*Calendar) {
	return r.ordered, r.calendars
}

// Zero padded to keep lexical and registration order aligned.
func serviceID(n int) string {
	return fmt.Sprintf("S%04d", n)
}
