package gtfs

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"
)

// Write emits one CSV file per table into a directory, creating it if
// needed.
func (feed *Feed) Write(directory string) error {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return err
	}

	for _, fileName := range sortedTableNames(feed) {
		records := feed.tables()[fileName]

		file, err := os.Create(filepath.Join(directory, fileName))
		if err != nil {
			return err
		}

		if err := gocsv.Marshal(records, file); err != nil {
			file.Close()
			return fmt.Errorf("failed to write %s: %w", fileName, err)
		}
		if err := file.Close(); err != nil {
			return err
		}

		log.Debug().Str("file", fileName).Msg("Wrote table")
	}

	return nil
}

// WriteZip packs the same tables into a single GTFS zip archive.
func (feed *Feed) WriteZip(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	archive := zip.NewWriter(file)

	for _, fileName := range sortedTableNames(feed) {
		records := feed.tables()[fileName]

		entry, err := archive.Create(fileName)
		if err != nil {
			return err
		}
		if err := gocsv.Marshal(records, entry); err != nil {
			return fmt.Errorf("failed to write %s: %w", fileName, err)
		}
	}

	return archive.Close()
}

func sortedTableNames(feed *Feed) []string {
	names := maps.Keys(feed.tables())
	sort.Strings(names)

	return names
}
