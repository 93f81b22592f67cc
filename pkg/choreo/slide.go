package choreo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/bridge"
	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// NewSlideDispatcher builds the dispatcher fired once per slide-index change
// (not per scroll tick). In an embedded context the viewpoint and time-slider
// handlers defer to the scroll-linked interpolator.
func NewSlideDispatcher() *Dispatcher {
	d := NewDispatcher("slide")
	d.Register(KeyViewpoint, setViewpoint)
	d.Register(KeyTimeSlider, configureTimeSlider)
	d.Register(KeyLayerVisibility, applyLayerVisibility)
	d.Register(KeyTrackRenderer, resetTrackRenderer)
	return d
}

// setViewpoint jumps the camera to the slide's viewpoint without
// interpolation.
func setViewpoint(ctx context.Context, f *Frame) error {
	if f.Embedded {
		return nil
	}
	if f.Map == nil {
		return errors.New("no map view attached")
	}
	return f.Map.GoTo(ctx, *f.Current.Viewpoint, bridge.GoToOptions{Animate: false})
}

// configureTimeSlider sets the slider's full extent and stop grid without
// animating it.
func configureTimeSlider(ctx context.Context, f *Frame) error {
	if f.Embedded {
		return nil
	}
	if f.Time == nil {
		return errors.New("no time slider attached")
	}
	if err := f.Time.Configure(ctx, *f.Current.TimeSlider); err != nil {
		return err
	}
	return f.Time.Stop(ctx)
}

// applyLayerVisibility toggles the named layers. A failed toggle does not
// stop the remaining ones.
func applyLayerVisibility(ctx context.Context, f *Frame) error {
	if f.Layers == nil {
		return errors.New("no layer controller attached")
	}

	var errs []error
	for _, toggle := range f.Current.LayerVisibility {
		if err := f.Layers.SetVisible(ctx, toggle.Title, toggle.Visible); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// resetTrackRenderer removes and re-adds the track layer (forcing a hard
// state reset) and reassigns its track-rendering configuration, including the
// observations for the slide's time window.
func resetTrackRenderer(ctx context.Context, f *Frame) error {
	if f.Layers == nil {
		return errors.New("no layer controller attached")
	}

	cfg := *f.Current.TrackRenderer
	obs := trackObservations(ctx, f, cfg)
	return f.Layers.ResetTrackLayer(ctx, cfg, obs)
}

// trackObservations fetches the slide's observation set. A missing track
// source or store error degrades to an empty set; the layer still resets.
func trackObservations(ctx context.Context, f *Frame, cfg model.TrackRendererConfig) []model.Observation {
	if f.Tracks == nil || cfg.TrackID == "" {
		return nil
	}

	var start, end time.Time
	if win := f.Current.TimeSlider; win != nil {
		start, end = win.Start, win.End
	}
	if cfg.ObservationAgeMs > 0 && !end.IsZero() {
		if cutoff := end.Add(-time.Duration(cfg.ObservationAgeMs) * time.Millisecond); cutoff.After(start) {
			start = cutoff
		}
	}

	obs, err := f.Tracks.ObservationsInWindow(ctx, cfg.TrackID, start, end, cfg.MaxObservations)
	if err != nil {
		// The renderer reset must proceed even without data.
		slog.Warn("Track observations unavailable", "track", cfg.TrackID, "error", err)
		return nil
	}
	if cfg.LatestObservations && len(obs) > 1 {
		obs = obs[len(obs)-1:]
	}
	return obs
}
