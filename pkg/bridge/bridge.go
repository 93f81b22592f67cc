// Package bridge is the seam between choreography and the vendor mapping SDK.
// The SDK itself runs inside the embedded map client; this package only
// describes the surface consumed and ships directives across the relay.
package bridge

import (
	"context"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// GoToOptions mirror the SDK's view.goTo animation options.
type GoToOptions struct {
	Animate  bool
	Duration time.Duration
}

// MapView animates or jumps the map camera.
// A new GoTo implicitly supersedes a prior in-flight one by SDK convention.
type MapView interface {
	GoTo(ctx context.Context, vp model.Viewpoint, opts GoToOptions) error
}

// TimeSliderState is the playback state reported by the slider.
type TimeSliderState string

const (
	TimeSliderReady   TimeSliderState = "ready"
	TimeSliderPlaying TimeSliderState = "playing"
)

// TimeSlider controls the map's time slider widget.
type TimeSlider interface {
	// Configure sets the full time extent and stop interval without animating.
	Configure(ctx context.Context, win model.TimeWindow) error
	// SetEnd moves the visible end of the time extent, leaving the start open.
	SetEnd(ctx context.Context, end time.Time) error
	Play(ctx context.Context) error
	Stop(ctx context.Context) error
	State() TimeSliderState
}

// LayerController toggles and reprovisions map layers by title.
type LayerController interface {
	SetVisible(ctx context.Context, title string, visible bool) error
	// ResetTrackLayer removes and re-adds the named layer (forcing a hard
	// state reset), waits for it to load, then assigns the track-rendering
	// config and observation set.
	ResetTrackLayer(ctx context.Context, cfg model.TrackRendererConfig, obs []model.Observation) error
}
