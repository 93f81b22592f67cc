package tracks

import (
	"fmt"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// CellCount is the number of observations falling into one H3 cell.
type CellCount struct {
	Cell  string `json:"cell"`
	Count int    `json:"count"`
}

// DensityCells buckets observations into H3 cells at the given resolution,
// sorted by descending count then cell id for stable output.
func DensityCells(obs []model.Observation, resolution int) ([]CellCount, error) {
	// H3 resolutions run 0..15.
	if resolution < 0 || resolution > 15 {
		return nil, fmt.Errorf("invalid H3 resolution %d", resolution)
	}

	counts := make(map[string]int)
	for _, o := range obs {
		cell, err := h3.LatLngToCell(h3.NewLatLng(o.Lat, o.Lon), resolution)
		if err != nil {
			return nil, fmt.Errorf("failed to index observation at (%f, %f): %w", o.Lat, o.Lon, err)
		}
		counts[cell.String()]++
	}

	out := make([]CellCount, 0, len(counts))
	for cell, n := range counts {
		out = append(out, CellCount{Cell: cell, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Cell < out[j].Cell
	})
	return out, nil
}
