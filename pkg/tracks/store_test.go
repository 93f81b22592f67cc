package tracks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := Init(filepath.Join(t.TempDir(), "tracks.db"))
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	st := NewSQLiteStore(db)
	t.Cleanup(func() { st.Close() })
	return st
}

func seedObservations(t *testing.T, st *SQLiteStore, trackID string, base time.Time, n int) {
	t.Helper()
	obs := make([]model.Observation, 0, n)
	for i := 0; i < n; i++ {
		obs = append(obs, model.Observation{
			TrackID: trackID,
			Time:    base.Add(time.Duration(i) * time.Hour),
			Lat:     25 + float64(i)*0.5,
			Lon:     -90 - float64(i)*0.5,
			Value:   float64(i * 10),
		})
	}
	if err := st.AddObservations(context.Background(), obs); err != nil {
		t.Fatalf("AddObservations() error = %v", err)
	}
}

func TestTrackRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	track := Track{ID: "laura", Title: "Hurricane Laura", Source: "nhc"}
	if err := st.SaveTrack(ctx, track); err != nil {
		t.Fatalf("SaveTrack() error = %v", err)
	}

	got, err := st.Track(ctx, "laura")
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if got.Title != "Hurricane Laura" || got.Source != "nhc" {
		t.Errorf("Track() = %+v", got)
	}

	// Upsert replaces metadata
	track.Title = "Laura (2020)"
	if err := st.SaveTrack(ctx, track); err != nil {
		t.Fatalf("SaveTrack() upsert error = %v", err)
	}
	got, err = st.Track(ctx, "laura")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Laura (2020)" {
		t.Errorf("upsert Title = %q", got.Title)
	}

	if _, err := st.Track(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Track(missing) error = %v, want ErrNotFound", err)
	}

	list, err := st.ListTracks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("ListTracks() = %d entries, want 1", len(list))
	}
}

func TestObservationsInWindow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2020, 8, 20, 0, 0, 0, 0, time.UTC)
	seedObservations(t, st, "laura", base, 24)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		limit   int
		wantLen int
	}{
		{"FullWindow", base, base.Add(23 * time.Hour), 0, 24},
		{"OpenBounds", time.Time{}, time.Time{}, 0, 24},
		{"SubWindow", base.Add(5 * time.Hour), base.Add(10 * time.Hour), 0, 6},
		{"InclusiveBounds", base.Add(1 * time.Hour), base.Add(1 * time.Hour), 0, 1},
		{"Limited", base, base.Add(23 * time.Hour), 5, 5},
		{"Empty", base.Add(-48 * time.Hour), base.Add(-24 * time.Hour), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.ObservationsInWindow(ctx, "laura", tt.start, tt.end, tt.limit)
			if err != nil {
				t.Fatalf("ObservationsInWindow() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Fatalf("got %d observations, want %d", len(got), tt.wantLen)
			}
			for i := 1; i < len(got); i++ {
				if got[i].Time.Before(got[i-1].Time) {
					t.Error("observations not ordered ascending by time")
				}
			}
		})
	}

	// Unknown track yields an empty set, not an error
	got, err := st.ObservationsInWindow(ctx, "nobody", time.Time{}, time.Time{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("unknown track returned %d observations", len(got))
	}
}

func TestImportGeoJSON(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"geometry": {"type": "Point", "coordinates": [-93.2, 27.8]},
				"properties": {"time": "2020-08-26T00:00:00Z", "value": 125}
			},
			{
				"type": "Feature",
				"geometry": {"type": "Point", "coordinates": [-93.5, 28.6]},
				"properties": {"timestamp": 1598468400000}
			},
			{
				"type": "Feature",
				"geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]},
				"properties": {"time": "2020-08-26T00:00:00Z"}
			},
			{
				"type": "Feature",
				"geometry": {"type": "Point", "coordinates": [-94.0, 29.0]},
				"properties": {}
			}
		]
	}`)

	n, err := ImportGeoJSON(ctx, st, Track{ID: "laura", Title: "Laura"}, data)
	if err != nil {
		t.Fatalf("ImportGeoJSON() error = %v", err)
	}
	// Line feature and timestamp-less point are skipped
	if n != 2 {
		t.Fatalf("imported %d observations, want 2", n)
	}

	obs, err := st.ObservationsInWindow(ctx, "laura", time.Time{}, time.Time{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(obs) != 2 {
		t.Fatalf("stored %d observations, want 2", len(obs))
	}
	if obs[0].Lon != -93.2 || obs[0].Lat != 27.8 || obs[0].Value != 125 {
		t.Errorf("first observation = %+v", obs[0])
	}
}

func TestDensityCells(t *testing.T) {
	obs := []model.Observation{
		{Lat: 27.8, Lon: -93.2},
		{Lat: 27.8001, Lon: -93.2001}, // same coarse cell
		{Lat: 48.85, Lon: 2.35},
	}

	cells, err := DensityCells(obs, 3)
	if err != nil {
		t.Fatalf("DensityCells() error = %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	if cells[0].Count != 2 || cells[1].Count != 1 {
		t.Errorf("cell counts = %+v, want sorted 2,1", cells)
	}

	if _, err := DensityCells(obs, 99); err == nil {
		t.Error("expected error for invalid resolution")
	}
}
