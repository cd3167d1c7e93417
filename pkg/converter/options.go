package converter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options configure a conversion run. The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	Agency AgencyOptions `yaml:"agency"`

	// Stops with the same code whose coordinates differ by more than this
	// many metres are reported as conflicting definitions.
	StopCoordinateToleranceMetres float64 `yaml:"stop_coordinate_tolerance_metres"`
}

type AgencyOptions struct {
	// Fallback values for agency.txt fields TransXChange has no source for.
	URL      string `yaml:"url"`
	Timezone string `yaml:"timezone"`
	Language string `yaml:"language"`
}

func DefaultOptions() Options {
	return Options{
		Agency: AgencyOptions{
			URL:      "https://www.gov.uk/",
			Timezone: "Europe/London",
			Language: "en",
		},
		StopCoordinateToleranceMetres: 10,
	}
}

// LoadOptions reads a YAML options file over the defaults.
func LoadOptions(path string) (Options, error) {
	options := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return options, err
	}

	if err := yaml.Unmarshal(data, &options); err != nil {
		return options, fmt.Errorf("failed to parse options file %s: %w", path, err)
	}

	return options, nil
}
