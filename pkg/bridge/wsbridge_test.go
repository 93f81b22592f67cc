package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []any
	err  error
}

func (f *fakeSender) SendToEmbeds(v any) error {
	f.sent = append(f.sent, v)
	return f.err
}

func TestWSBridge_GoTo(t *testing.T) {
	s := &fakeSender{}
	b := NewWSBridge(s)

	vp := model.Viewpoint{Rotation: 10, Scale: 50000}
	err := b.GoTo(context.Background(), vp, GoToOptions{Animate: true, Duration: time.Second})
	require.NoError(t, err)
	require.Len(t, s.sent, 1)

	d, ok := s.sent[0].(Directive)
	require.True(t, ok)
	assert.Equal(t, ActionGoTo, d.Action)
	assert.Equal(t, 10.0, d.Viewpoint.Rotation)
	assert.True(t, d.Animate)
	assert.Equal(t, int64(1000), d.DurationMs)
}

func TestWSBridge_TimeSlider(t *testing.T) {
	s := &fakeSender{}
	b := NewWSBridge(s)
	ctx := context.Background()

	end := time.Date(2020, 8, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, b.SetEnd(ctx, end))
	require.NoError(t, b.Play(ctx))
	assert.Equal(t, TimeSliderPlaying, b.State())
	require.NoError(t, b.Stop(ctx))
	assert.Equal(t, TimeSliderReady, b.State())

	require.Len(t, s.sent, 3)
	assert.Equal(t, ActionTimeSetEnd, s.sent[0].(Directive).Action)
	assert.Equal(t, end, *s.sent[0].(Directive).End)
	assert.Equal(t, ActionTimePlay, s.sent[1].(Directive).Action)
	assert.Equal(t, ActionTimeStop, s.sent[2].(Directive).Action)
}

func TestWSBridge_Layers(t *testing.T) {
	s := &fakeSender{}
	b := NewWSBridge(s)
	ctx := context.Background()

	require.NoError(t, b.SetVisible(ctx, "Wind Field", false))
	cfg := model.TrackRendererConfig{LayerTitle: "Hurricane Track", TrackID: "laura"}
	obs := []model.Observation{{TrackID: "laura", Lat: 27.8, Lon: -93.2}}
	require.NoError(t, b.ResetTrackLayer(ctx, cfg, obs))

	require.Len(t, s.sent, 2)
	vis := s.sent[0].(Directive)
	assert.Equal(t, ActionLayerVisible, vis.Action)
	assert.Equal(t, "Wind Field", vis.LayerTitle)
	require.NotNil(t, vis.Visible)
	assert.False(t, *vis.Visible)

	reset := s.sent[1].(Directive)
	assert.Equal(t, ActionTrackReset, reset.Action)
	assert.Equal(t, "Hurricane Track", reset.LayerTitle)
	assert.Len(t, reset.Observations, 1)
}

func TestWSBridge_ContextCancelled(t *testing.T) {
	s := &fakeSender{}
	b := NewWSBridge(s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.GoTo(ctx, model.Viewpoint{}, GoToOptions{})
	assert.Error(t, err)
	assert.Empty(t, s.sent)
}
