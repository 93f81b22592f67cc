package model

import (
	"time"

	"github.com/paulmach/orb"
)

// SpatialReference identifies the coordinate system of an extent.
type SpatialReference struct {
	WKID       int `json:"wkid,omitempty"`
	LatestWKID int `json:"latestWkid,omitempty"`
}

// Extent is an axis-aligned camera extent in a spatial reference.
// Field names match the mapping SDK's JSON representation.
type Extent struct {
	SpatialReference SpatialReference `json:"spatialReference"`
	XMin             float64          `json:"xmin"`
	YMin             float64          `json:"ymin"`
	XMax             float64          `json:"xmax"`
	YMax             float64          `json:"ymax"`
}

// Bound converts the extent to an orb.Bound.
func (e Extent) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{e.XMin, e.YMin},
		Max: orb.Point{e.XMax, e.YMax},
	}
}

// ExtentFromBound builds an extent from an orb.Bound in the given reference.
func ExtentFromBound(b orb.Bound, sr SpatialReference) Extent {
	return Extent{
		SpatialReference: sr,
		XMin:             b.Min[0],
		YMin:             b.Min[1],
		XMax:             b.Max[0],
		YMax:             b.Max[1],
	}
}

// Viewpoint is a camera extent descriptor native to the mapping SDK.
type Viewpoint struct {
	Rotation       float64 `json:"rotation"`
	Scale          float64 `json:"scale"`
	TargetGeometry Extent  `json:"targetGeometry"`
}

// StepUnit is a discrete time-slider step unit.
type StepUnit string

// Step units supported by the time slider, smallest to largest.
const (
	UnitSeconds StepUnit = "seconds"
	UnitMinutes StepUnit = "minutes"
	UnitHours   StepUnit = "hours"
	UnitDays    StepUnit = "days"
	UnitWeeks   StepUnit = "weeks"
	UnitMonths  StepUnit = "months"
	UnitYears   StepUnit = "years"
)

// FixedDuration returns n units as a time.Duration.
// Months and years have no fixed length; they return ok=false and must be
// advanced with Add instead.
func (u StepUnit) FixedDuration(n int) (d time.Duration, ok bool) {
	switch u {
	case UnitSeconds:
		return time.Duration(n) * time.Second, true
	case UnitMinutes:
		return time.Duration(n) * time.Minute, true
	case UnitHours:
		return time.Duration(n) * time.Hour, true
	case UnitDays:
		return time.Duration(n) * 24 * time.Hour, true
	case UnitWeeks:
		return time.Duration(n) * 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Add advances t by n units, calendar-aware for months and years.
func (u StepUnit) Add(t time.Time, n int) time.Time {
	switch u {
	case UnitMonths:
		return t.AddDate(0, n, 0)
	case UnitYears:
		return t.AddDate(n, 0, 0)
	default:
		d, _ := u.FixedDuration(n)
		return t.Add(d)
	}
}

// Valid reports whether the unit is one of the supported step units.
func (u StepUnit) Valid() bool {
	switch u {
	case UnitSeconds, UnitMinutes, UnitHours, UnitDays, UnitWeeks, UnitMonths, UnitYears:
		return true
	}
	return false
}

// TimeWindow defines an interpolatable date range with a discrete step used
// to quantize a continuous position back to a valid frame.
type TimeWindow struct {
	Start time.Time `json:"timeSliderStart"`
	End   time.Time `json:"timeSliderEnd"`
	Step  int       `json:"timeSliderStep"`
	Unit  StepUnit  `json:"timeSliderUnit"`
}

// LayerToggle names a map layer by title and the visibility it should have.
type LayerToggle struct {
	Title   string `json:"title"`
	Visible bool   `json:"visible"`
}

// TrackRendererConfig describes the time-series track layer a slide
// (re)provisions.
type TrackRendererConfig struct {
	LayerTitle string `json:"layerTitle"`
	TrackID    string `json:"trackId,omitempty"`
	// TrackIDField is the layer attribute the renderer groups observations by.
	TrackIDField string `json:"trackIdField,omitempty"`
	// ObservationAgeMs keeps only observations within this many milliseconds
	// of the window end; 0 keeps the whole window.
	ObservationAgeMs int64 `json:"observationAge,omitempty"`
	// MaxObservations caps observations rendered per track; 0 means no cap.
	MaxObservations int `json:"maxObservations,omitempty"`
	// LatestObservations renders only the newest observation per track.
	LatestObservations bool `json:"latestObservations,omitempty"`
}

// Observation is a single timestamped track sample.
type Observation struct {
	TrackID string    `json:"trackId"`
	Time    time.Time `json:"time"`
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lon"`
	Value   float64   `json:"value,omitempty"`
}

// Point returns the observation position as an orb.Point (lon, lat).
func (o Observation) Point() orb.Point {
	return orb.Point{o.Lon, o.Lat}
}

// Slide is one choreography entry: the map state a narrative slide reaches.
// All fields are optional; absent fields leave the corresponding map property
// untouched.
type Slide struct {
	Viewpoint       *Viewpoint           `json:"viewpoint,omitempty"`
	TimeSlider      *TimeWindow          `json:"timeSlider,omitempty"`
	LayerVisibility []LayerToggle        `json:"layerVisibility,omitempty"`
	TrackRenderer   *TrackRendererConfig `json:"trackRenderer,omitempty"`
}

// Choreography key names as they appear in the story JSON.
const (
	KeyViewpoint       = "viewpoint"
	KeyTimeSlider      = "timeSlider"
	KeyLayerVisibility = "layerVisibility"
	KeyTrackRenderer   = "trackRenderer"
)

// Keys lists the choreography keys present on the slide, in a stable order.
func (s *Slide) Keys() []string {
	var keys []string
	if s.Viewpoint != nil {
		keys = append(keys, KeyViewpoint)
	}
	if s.TimeSlider != nil {
		keys = append(keys, KeyTimeSlider)
	}
	if len(s.LayerVisibility) > 0 {
		keys = append(keys, KeyLayerVisibility)
	}
	if s.TrackRenderer != nil {
		keys = append(keys, KeyTrackRenderer)
	}
	return keys
}

// Panel is the effective geometry of one narrative panel as reported by the
// outer page.
type Panel struct {
	Height       float64 `json:"height"`
	MarginTop    float64 `json:"marginTop"`
	MarginBottom float64 `json:"marginBottom"`
}
