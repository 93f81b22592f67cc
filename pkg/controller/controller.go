// Package controller is the single authority over playback state: which slide
// is active, whether the map runs embedded, and when the discrete and
// scroll-linked choreography paths fire.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/bridge"
	"github.com/WarrenDz/scrolly-story-animations/pkg/choreo"
	"github.com/WarrenDz/scrolly-story-animations/pkg/logging"
	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
	"github.com/WarrenDz/scrolly-story-animations/pkg/relay"
	"github.com/WarrenDz/scrolly-story-animations/pkg/scroll"
	"github.com/WarrenDz/scrolly-story-animations/pkg/story"
)

// ProgressMirror republishes derived progress to narrative clients. The relay
// hub implements it; tests substitute a recorder.
type ProgressMirror interface {
	BroadcastProgress(slide int, progress float64)
}

// Options wires a controller's collaborators.
type Options struct {
	Story  *story.Story
	Map    bridge.MapView
	Time   bridge.TimeSlider
	Layers bridge.LayerController
	Tracks choreo.TrackSource

	// Mirror, when set, receives progress derived from raw scroll geometry.
	Mirror ProgressMirror

	// AnimationDuration is the goTo length for scroll-linked camera moves.
	AnimationDuration time.Duration
	// TrackLimit caps observations fetched per track-renderer reset when the
	// slide itself does not set one.
	TrackLimit int
}

// Controller implements the relay event sink, translating page events into
// dispatches. All entry points are safe for concurrent use; the relay calls
// them from per-connection read goroutines.
type Controller struct {
	story      *story.Story
	mapView    bridge.MapView
	timeSlider bridge.TimeSlider
	layers     bridge.LayerController
	tracks     choreo.TrackSource
	mirror     ProgressMirror

	tracker        *scroll.Tracker
	scrollDispatch *choreo.Dispatcher
	slideDispatch  *choreo.Dispatcher

	animationDuration time.Duration
	trackLimit        int

	mu       sync.Mutex
	slide    int
	embedded bool
}

// New creates a controller. The current slide starts at 0; no choreography
// fires until the first event arrives.
func New(opts Options) *Controller {
	return &Controller{
		story:             opts.Story,
		mapView:           opts.Map,
		timeSlider:        opts.Time,
		layers:            opts.Layers,
		tracks:            opts.Tracks,
		mirror:            opts.Mirror,
		tracker:           scroll.New(),
		scrollDispatch:    choreo.NewScrollDispatcher(),
		slideDispatch:     choreo.NewSlideDispatcher(),
		animationDuration: opts.AnimationDuration,
		trackLimit:        opts.TrackLimit,
	}
}

// Slide returns the current slide index.
func (c *Controller) Slide() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slide
}

// Embedded reports whether an embedded map has identified itself.
func (c *Controller) Embedded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.embedded
}

// TimeSliderState reports the time slider's last commanded playback state.
func (c *Controller) TimeSliderState() bridge.TimeSliderState {
	return c.timeSlider.State()
}

// Start applies the initial slide's discrete choreography so a freshly loaded
// page shows slide state before any scrolling happens.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	slide := c.slide
	c.mu.Unlock()

	logging.Event("Playback started", "slide", slide)
	c.slideDispatch.Dispatch(ctx, c.frame(slide, 0))
}

// SetSlide moves the slide pointer and, when the index actually changes,
// fires the discrete choreography exactly once. Out-of-range indices move the
// pointer but dispatch nothing.
func (c *Controller) SetSlide(ctx context.Context, slide int) {
	c.mu.Lock()
	changed := slide != c.slide
	c.slide = slide
	c.mu.Unlock()

	if !changed {
		return
	}

	logging.Event("Slide changed", "slide", slide)
	c.slideDispatch.Dispatch(ctx, c.frame(slide, 0))
}

// OnProgress applies a slide/progress pair reported by the narrative page:
// a slide change fires the discrete path, then the scroll-linked path
// interpolates at the reported progress.
func (c *Controller) OnProgress(ctx context.Context, slide int, progress float64) {
	c.SetSlide(ctx, slide)
	c.scrollDispatch.Dispatch(ctx, c.frame(slide, progress))
}

// OnScroll folds a raw scroll offset into the tracker and, while the map
// panel is docked, derives progress for the current slide, runs the
// scroll-linked path and mirrors the result back to narrative clients.
func (c *Controller) OnScroll(ctx context.Context, y float64) {
	c.tracker.Observe(y)
	if !c.tracker.Docked() {
		return
	}

	slide := c.Slide()
	progress := c.tracker.Progress(slide)
	c.scrollDispatch.Dispatch(ctx, c.frame(slide, progress))

	if c.mirror != nil {
		c.mirror.BroadcastProgress(slide, progress)
	}
}

// OnDock updates the docking state. The tracker captures the dock-start
// offset on the downward docking transition.
func (c *Controller) OnDock(ctx context.Context, docked bool) {
	c.tracker.SetDocked(docked)
	logging.Event("Dock state changed", "docked", docked, "offset", c.tracker.DockStart())
}

// OnLayout replaces the panel layout used to derive progress from offsets.
func (c *Controller) OnLayout(ctx context.Context, panels []model.Panel) {
	c.tracker.SetPanels(panels)
}

// OnHash navigates to the slide named by a URL hash change.
func (c *Controller) OnHash(ctx context.Context, fragment string) {
	c.SetSlide(ctx, relay.ParseHash(fragment))
}

// OnSlide accepts the authoritative slide pointer parsed from the embed src.
func (c *Controller) OnSlide(ctx context.Context, slide int) {
	c.SetSlide(ctx, slide)
}

// OnEmbed records embedded mode. Once embedded, the discrete path stops
// touching the viewpoint and time slider; the scroll-linked path owns them.
func (c *Controller) OnEmbed(ctx context.Context, embedded bool) {
	c.mu.Lock()
	c.embedded = embedded
	c.mu.Unlock()
	logging.Event("Embedded mode", "embedded", embedded)
}

// frame assembles the dispatch context for a slide at the given progress.
func (c *Controller) frame(slide int, progress float64) *choreo.Frame {
	current, next := c.story.Pair(slide)

	c.mu.Lock()
	embedded := c.embedded
	c.mu.Unlock()

	return &choreo.Frame{
		Current:           current,
		Next:              next,
		Slide:             slide,
		Progress:          progress,
		Embedded:          embedded,
		Map:               c.mapView,
		Time:              c.timeSlider,
		Layers:            c.layers,
		Tracks:            c.limitedTracks(),
		AnimationDuration: c.animationDuration,
	}
}

// limitedTracks wraps the track source so window queries without an explicit
// cap still respect the configured default limit.
func (c *Controller) limitedTracks() choreo.TrackSource {
	if c.tracks == nil {
		return nil
	}
	if c.trackLimit <= 0 {
		return c.tracks
	}
	return &cappedTracks{src: c.tracks, limit: c.trackLimit}
}

type cappedTracks struct {
	src   choreo.TrackSource
	limit int
}

func (t *cappedTracks) ObservationsInWindow(ctx context.Context, trackID string, start, end time.Time, limit int) ([]model.Observation, error) {
	if limit <= 0 || limit > t.limit {
		limit = t.limit
	}
	return t.src.ObservationsInWindow(ctx, trackID, start, end, limit)
}
