package main

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/txc2gtfs/txc2gtfs/pkg/bankholidays"
	"github.com/txc2gtfs/txc2gtfs/pkg/converter"
	"github.com/txc2gtfs/txc2gtfs/pkg/transxchange"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("TXC2GTFS_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TXC2GTFS_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "txc2gtfs",
		Description: "Converts UK TransXChange schedule documents into a GTFS feed",

		Commands: []*cli.Command{
			{
				Name:  "convert",
				Usage: "convert TransXChange XML into GTFS tables",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Usage: "XML file, directory or zip of documents", Required: true},
					&cli.StringFlag{Name: "output", Usage: "output directory (or zip path with --zip)", Required: true},
					&cli.BoolFlag{Name: "zip", Usage: "write a single GTFS zip instead of a directory"},
					&cli.StringFlag{Name: "bank-holidays", Usage: "gov.uk bank-holidays.json file (bundled snapshot used otherwise)"},
					&cli.StringFlag{Name: "config", Usage: "YAML options file"},
				},
				Action: runConvert,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func runConvert(c *cli.Context) error {
	options := converter.DefaultOptions()
	if path := c.String("config"); path != "" {
		var err error
		options, err = converter.LoadOptions(path)
		if err != nil {
			return err
		}
	}

	holidays, err := loadBankHolidays(c.String("bank-holidays"))
	if err != nil {
		return err
	}

	documents, err := loadDocuments(c.String("input"))
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		return fmt.Errorf("no TransXChange documents found in %s", c.String("input"))
	}

	result, err := converter.Convert(documents, holidays, options)
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		log.Warn().Str("file", warning.File).Str("entity", warning.Entity).
			Str("kind", string(warning.Kind)).Msg(warning.Detail)
	}

	if c.Bool("zip") {
		return result.Feed.WriteZip(c.String("output"))
	}

	return result.Feed.Write(c.String("output"))
}

func loadBankHolidays(path string) (bankholidays.Table, error) {
	if path == "" {
		log.Debug().Msg("Using bundled bank holiday snapshot")
		return bankholidays.LoadSnapshot()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return bankholidays.Load(file)
}

func loadDocuments(input string) ([]*transxchange.TransXChange, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return loadDirectory(input)
	}
	if strings.HasSuffix(strings.ToLower(input), ".zip") {
		return loadZip(input)
	}

	document, err := loadFile(input)
	if err != nil {
		return nil, err
	}

	return []*transxchange.TransXChange{document}, nil
}

func loadDirectory(directory string) ([]*transxchange.TransXChange, error) {
	var documents []*transxchange.TransXChange

	err := filepath.WalkDir(directory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".xml") {
			return nil
		}

		document, err := loadFile(path)
		if err != nil {
			return err
		}
		documents = append(documents, document)

		return nil
	})

	return documents, err
}

func loadZip(path string) ([]*transxchange.TransXChange, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	var documents []*transxchange.TransXChange

	for _, member := range archive.File {
		if !strings.HasSuffix(strings.ToLower(member.Name), ".xml") {
			continue
		}

		reader, err := member.Open()
		if err != nil {
			return nil, err
		}

		document, err := transxchange.ParseXMLFile(reader, member.Name)
		reader.Close()
		if err != nil {
			return nil, err
		}

		documents = append(documents, document)
	}

	return documents, nil
}

func loadFile(path string) (*transxchange.TransXChange, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return transxchange.ParseXMLFile(file, filepath.Base(path))
}
