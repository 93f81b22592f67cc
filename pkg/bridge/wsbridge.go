package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// Sender delivers a directive payload to every attached embed client.
// Implemented by the relay hub.
type Sender interface {
	SendToEmbeds(v any) error
}

// Directive is one map instruction shipped to the embed client, which applies
// it through the vendor SDK.
type Directive struct {
	Action string `json:"action"`

	Viewpoint  *model.Viewpoint `json:"viewpoint,omitempty"`
	Animate    bool             `json:"animate,omitempty"`
	DurationMs int64            `json:"duration,omitempty"`

	TimeWindow *model.TimeWindow `json:"timeWindow,omitempty"`
	End        *time.Time        `json:"end,omitempty"`

	LayerTitle string `json:"layerTitle,omitempty"`
	Visible    *bool  `json:"visible,omitempty"`

	TrackRenderer *model.TrackRendererConfig `json:"trackRenderer,omitempty"`
	Observations  []model.Observation        `json:"observations,omitempty"`
}

// Directive actions understood by the embed client.
const (
	ActionGoTo          = "map.goTo"
	ActionTimeConfigure = "timeSlider.configure"
	ActionTimeSetEnd    = "timeSlider.setEnd"
	ActionTimePlay      = "timeSlider.play"
	ActionTimeStop      = "timeSlider.stop"
	ActionLayerVisible  = "layer.visible"
	ActionTrackReset    = "trackLayer.reset"
)

// WSBridge implements MapView, TimeSlider and LayerController by relaying
// directives to the embedded map. Calls are fire-and-forget: the embed applies
// them asynchronously and failures there are logged client-side.
type WSBridge struct {
	sender Sender

	mu    sync.RWMutex
	state TimeSliderState
}

// NewWSBridge creates a bridge over the given sender.
func NewWSBridge(sender Sender) *WSBridge {
	return &WSBridge{sender: sender, state: TimeSliderReady}
}

// GoTo implements MapView.
func (b *WSBridge) GoTo(ctx context.Context, vp model.Viewpoint, opts GoToOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.sender.SendToEmbeds(Directive{
		Action:     ActionGoTo,
		Viewpoint:  &vp,
		Animate:    opts.Animate,
		DurationMs: opts.Duration.Milliseconds(),
	})
}

// Configure implements TimeSlider.
func (b *WSBridge) Configure(ctx context.Context, win model.TimeWindow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.sender.SendToEmbeds(Directive{
		Action:     ActionTimeConfigure,
		TimeWindow: &win,
	})
}

// SetEnd implements TimeSlider.
func (b *WSBridge) SetEnd(ctx context.Context, end time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.sender.SendToEmbeds(Directive{
		Action: ActionTimeSetEnd,
		End:    &end,
	})
}

// Play implements TimeSlider.
func (b *WSBridge) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.setState(TimeSliderPlaying)
	return b.sender.SendToEmbeds(Directive{Action: ActionTimePlay})
}

// Stop implements TimeSlider.
func (b *WSBridge) Stop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.setState(TimeSliderReady)
	return b.sender.SendToEmbeds(Directive{Action: ActionTimeStop})
}

// State implements TimeSlider.
func (b *WSBridge) State() TimeSliderState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *WSBridge) setState(s TimeSliderState) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// SetVisible implements LayerController.
func (b *WSBridge) SetVisible(ctx context.Context, title string, visible bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.sender.SendToEmbeds(Directive{
		Action:     ActionLayerVisible,
		LayerTitle: title,
		Visible:    &visible,
	})
}

// ResetTrackLayer implements LayerController.
func (b *WSBridge) ResetTrackLayer(ctx context.Context, cfg model.TrackRendererConfig, obs []model.Observation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.sender.SendToEmbeds(Directive{
		Action:        ActionTrackReset,
		LayerTitle:    cfg.LayerTitle,
		TrackRenderer: &cfg,
		Observations:  obs,
	})
}
