package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// Call records a single bridge invocation for inspection.
type Call struct {
	Method    string
	Viewpoint *model.Viewpoint
	Options   GoToOptions
	Window    *model.TimeWindow
	End       time.Time
	Title     string
	Visible   bool
	Config    *model.TrackRendererConfig
	Obs       []model.Observation
}

// Mock implements MapView, TimeSlider and LayerController, recording calls.
// Err, when set, is returned from every method.
type Mock struct {
	mu    sync.Mutex
	calls []Call
	state TimeSliderState

	Err error
}

// NewMock creates a recording bridge.
func NewMock() *Mock {
	return &Mock{state: TimeSliderReady}
}

func (m *Mock) record(c Call) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsFor returns the recorded calls for a single method.
func (m *Mock) CallsFor(method string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

// GoTo implements MapView.
func (m *Mock) GoTo(ctx context.Context, vp model.Viewpoint, opts GoToOptions) error {
	m.record(Call{Method: "GoTo", Viewpoint: &vp, Options: opts})
	return m.Err
}

// Configure implements TimeSlider.
func (m *Mock) Configure(ctx context.Context, win model.TimeWindow) error {
	m.record(Call{Method: "Configure", Window: &win})
	return m.Err
}

// SetEnd implements TimeSlider.
func (m *Mock) SetEnd(ctx context.Context, end time.Time) error {
	m.record(Call{Method: "SetEnd", End: end})
	return m.Err
}

// Play implements TimeSlider.
func (m *Mock) Play(ctx context.Context) error {
	m.record(Call{Method: "Play"})
	m.mu.Lock()
	m.state = TimeSliderPlaying
	m.mu.Unlock()
	return m.Err
}

// Stop implements TimeSlider.
func (m *Mock) Stop(ctx context.Context) error {
	m.record(Call{Method: "Stop"})
	m.mu.Lock()
	m.state = TimeSliderReady
	m.mu.Unlock()
	return m.Err
}

// State implements TimeSlider.
func (m *Mock) State() TimeSliderState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetVisible implements LayerController.
func (m *Mock) SetVisible(ctx context.Context, title string, visible bool) error {
	m.record(Call{Method: "SetVisible", Title: title, Visible: visible})
	return m.Err
}

// ResetTrackLayer implements LayerController.
func (m *Mock) ResetTrackLayer(ctx context.Context, cfg model.TrackRendererConfig, obs []model.Observation) error {
	m.record(Call{Method: "ResetTrackLayer", Title: cfg.LayerTitle, Config: &cfg, Obs: obs})
	return m.Err
}
