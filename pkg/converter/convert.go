// Package converter resolves TransXChange entity graphs into a GTFS feed:
// operating profiles become service calendars, vehicle journeys become trips
// with per-stop times, and the identifier namespaces of all source files are
// consolidated into one.
package converter

import (
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/txc2gtfs/txc2gtfs/pkg/bankholidays"
	"github.com/txc2gtfs/txc2gtfs/pkg/gtfs"
	"github.com/txc2gtfs/txc2gtfs/pkg/transxchange"
)

// Result is a finished conversion: the feed plus every recovered per-entity
// problem encountered along the way.
type Result struct {
	Feed     *gtfs.Feed
	Warnings []Warning
}

// Convert turns parsed TransXChange documents into one GTFS feed. Files are
// processed in parallel; consolidation is serial and happens in sorted file
// name order so identifier assignment is reproducible run to run. The only
// fatal error is a cross-file identifier conflict.
func Convert(documents []*transxchange.TransXChange, holidays bankholidays.Table, options Options) (*Result, error) {
	sorted := make([]*transxchange.TransXChange, len(documents))
	copy(sorted, documents)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FileName < sorted[j].FileName
	})

	// Extraction has no cross-file state. Each result lands in a slot per
	// document, so consolidation sees them in sorted file name order no
	// matter which file finishes first.
	extracts := make([]*fileExtract, len(sorted))
	p := pool.New()
	for i, document := range sorted {
		p.Go(func() {
			extracts[i] = extractFile(document, holidays, options)
		})
	}
	p.Wait()

	consolidator := newConsolidator(options)
	for _, extract := range extracts {
		if err := consolidator.addExtract(extract); err != nil {
			return nil, err
		}
	}

	feed := consolidator.finalise()

	log.Info().
		Int("files", len(documents)).
		Int("trips", len(feed.Trips)).
		Int("stops", len(feed.Stops)).
		Int("warnings", len(consolidator.warnings)).
		Msg("Conversion finished")

	return &Result{
		Feed:     feed,
		Warnings: consolidator.warnings,
	}, nil
}
