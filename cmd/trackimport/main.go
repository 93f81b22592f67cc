// trackimport loads track observations from a GeoJSON file or a point
// shapefile into the track store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/WarrenDz/scrolly-story-animations/pkg/tracks"
)

func main() {
	dbPath := flag.String("db", "./data/storymap.db", "Path to the track database")
	inputPath := flag.String("input", "", "Path to input .geojson or .shp file")
	trackID := flag.String("id", "", "Track id (defaults to the input file name)")
	title := flag.String("title", "", "Track title")
	source := flag.String("source", "", "Track source attribution")
	timeField := flag.String("time-field", "time", "Shapefile attribute holding the timestamp")
	valueField := flag.String("value-field", "", "Shapefile attribute holding the observation value")
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		log.Fatal("Input path is required")
	}

	id := *trackID
	if id == "" {
		base := filepath.Base(*inputPath)
		id = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := run(*dbPath, *inputPath, id, *title, *source, *timeField, *valueField); err != nil {
		log.Fatal(err)
	}
}

func run(dbPath, inputPath, id, title, source, timeField, valueField string) error {
	db, err := tracks.Init(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open track database: %w", err)
	}
	st := tracks.NewSQLiteStore(db)
	defer st.Close()

	track := tracks.Track{ID: id, Title: title, Source: source}
	if track.Title == "" {
		track.Title = id
	}

	ctx := context.Background()
	var n int

	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".geojson", ".json":
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		n, err = tracks.ImportGeoJSON(ctx, st, track, data)
		if err != nil {
			return err
		}
	case ".shp":
		n, err = tracks.ImportShapefile(ctx, st, track, inputPath, timeField, valueField)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported input format: %s", inputPath)
	}

	fmt.Printf("Imported %d observations into track %q\n", n, track.ID)
	return nil
}
