package choreo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/bridge"
	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// Key names a choreography handler in a dispatch table.
type Key string

// Dispatchable choreography keys.
const (
	KeyViewpoint       Key = model.KeyViewpoint
	KeyTimeSlider      Key = model.KeyTimeSlider
	KeyLayerVisibility Key = model.KeyLayerVisibility
	KeyTrackRenderer   Key = model.KeyTrackRenderer
)

// TrackSource supplies observations for the track renderer.
type TrackSource interface {
	ObservationsInWindow(ctx context.Context, trackID string, start, end time.Time, limit int) ([]model.Observation, error)
}

// Frame is the shared context handed to every handler in one dispatch call.
type Frame struct {
	Current *model.Slide
	Next    *model.Slide

	Slide    int
	Progress float64

	// Embedded suppresses camera and time-slider handlers on the discrete
	// path, deferring those properties to the scroll-linked interpolator so
	// two authorities never fight over them.
	Embedded bool

	Map    bridge.MapView
	Time   bridge.TimeSlider
	Layers bridge.LayerController
	Tracks TrackSource

	// AnimationDuration is the goTo duration for scroll-linked camera moves.
	AnimationDuration time.Duration
}

// HandlerFunc handles one choreography key for a frame.
type HandlerFunc func(ctx context.Context, f *Frame) error

// Dispatcher routes the choreography keys present on a slide to handlers.
// Keys without a registered handler are silently ignored, and one handler's
// failure never blocks the others.
type Dispatcher struct {
	name     string
	handlers map[Key]HandlerFunc
}

// NewDispatcher creates an empty dispatch table. The name only labels logs.
func NewDispatcher(name string) *Dispatcher {
	return &Dispatcher{
		name:     name,
		handlers: make(map[Key]HandlerFunc),
	}
}

// Register installs a handler for a key, replacing any previous one.
func (d *Dispatcher) Register(k Key, h HandlerFunc) {
	d.handlers[k] = h
}

// Dispatch invokes the handler for every key present on the current slide.
// A nil current slide is a no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, f *Frame) {
	if f == nil || f.Current == nil {
		return
	}
	for _, key := range f.Current.Keys() {
		h, ok := d.handlers[Key(key)]
		if !ok {
			continue
		}
		d.invoke(ctx, Key(key), h, f)
	}
}

// invoke runs a single handler in isolation.
func (d *Dispatcher) invoke(ctx context.Context, k Key, h HandlerFunc, f *Frame) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Choreography handler panicked", "dispatcher", d.name, "key", string(k), "slide", f.Slide, "panic", fmt.Sprint(r))
		}
	}()

	if err := h(ctx, f); err != nil {
		slog.Error("Choreography handler failed", "dispatcher", d.name, "key", string(k), "slide", f.Slide, "error", err)
	}
}
