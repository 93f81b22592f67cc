package tracks

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// Property names recognized on GeoJSON point features.
const (
	propTime      = "time"
	propTimestamp = "timestamp"
	propValue     = "value"
	propTrackID   = "trackId"
)

// ImportGeoJSON stores every point feature of a GeoJSON feature collection as
// an observation of the given track. Features without a usable geometry or
// timestamp are skipped with a warning.
func ImportGeoJSON(ctx context.Context, st Store, track Track, data []byte) (int, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return 0, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	var obs []model.Observation
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			slog.Warn("Import: skipping non-point feature", "index", i, "type", fmt.Sprintf("%T", f.Geometry))
			continue
		}

		ts, ok := featureTime(f.Properties)
		if !ok {
			slog.Warn("Import: skipping feature without timestamp", "index", i)
			continue
		}

		trackID := track.ID
		if v, ok := f.Properties[propTrackID].(string); ok && v != "" {
			trackID = v
		}

		obs = append(obs, model.Observation{
			TrackID: trackID,
			Time:    ts,
			Lat:     pt[1],
			Lon:     pt[0],
			Value:   floatProp(f.Properties, propValue),
		})
	}

	if err := st.SaveTrack(ctx, track); err != nil {
		return 0, err
	}
	if err := st.AddObservations(ctx, obs); err != nil {
		return 0, err
	}
	return len(obs), nil
}

// ImportShapefile stores every point shape of a shapefile as an observation,
// reading the timestamp and value from the named attribute fields.
func ImportShapefile(ctx context.Context, st Store, track Track, path, timeField, valueField string) (int, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer shape.Close()

	fields := shape.Fields()
	timeIdx, valueIdx := -1, -1
	for i, f := range fields {
		switch f.String() {
		case timeField:
			timeIdx = i
		case valueField:
			valueIdx = i
		}
	}
	if timeIdx < 0 {
		return 0, fmt.Errorf("time field %q not found in shapefile", timeField)
	}

	var obs []model.Observation
	for shape.Next() {
		n, p := shape.Shape()

		pt, ok := p.(*shp.Point)
		if !ok {
			slog.Warn("Import: skipping non-point shape", "row", n, "type", fmt.Sprintf("%T", p))
			continue
		}

		ts, ok := parseTimeValue(shape.ReadAttribute(n, timeIdx))
		if !ok {
			slog.Warn("Import: skipping shape with unparsable time", "row", n)
			continue
		}

		var value float64
		if valueIdx >= 0 {
			value, _ = strconv.ParseFloat(shape.ReadAttribute(n, valueIdx), 64)
		}

		obs = append(obs, model.Observation{
			TrackID: track.ID,
			Time:    ts,
			Lat:     pt.Y,
			Lon:     pt.X,
			Value:   value,
		})
	}
	if err := shape.Err(); err != nil {
		return 0, fmt.Errorf("error iterating shapes: %w", err)
	}

	if err := st.SaveTrack(ctx, track); err != nil {
		return 0, err
	}
	if err := st.AddObservations(ctx, obs); err != nil {
		return 0, err
	}
	return len(obs), nil
}

// featureTime extracts a timestamp from GeoJSON properties, accepting RFC3339
// strings or epoch milliseconds under "time" or "timestamp".
func featureTime(props geojson.Properties) (time.Time, bool) {
	for _, key := range []string{propTime, propTimestamp} {
		v, ok := props[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if ts, ok := parseTimeValue(t); ok {
				return ts, true
			}
		case float64:
			return time.UnixMilli(int64(t)).UTC(), true
		}
	}
	return time.Time{}, false
}

// parseTimeValue parses an RFC3339 string or a decimal epoch-milliseconds
// string.
func parseTimeValue(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), true
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

func floatProp(props geojson.Properties, key string) float64 {
	if v, ok := props[key].(float64); ok {
		return v
	}
	return 0
}
