package choreo

import (
	"context"
	"errors"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/bridge"
	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// DefaultAnimationDuration is the goTo animation length for scroll-linked
// viewpoint updates when the frame does not carry one.
const DefaultAnimationDuration = 1000 * time.Millisecond

// NewScrollDispatcher builds the dispatcher run on every progress tick while
// a slide's panel is docked. Only viewpoint and time slider interpolate with
// scroll; layer and track choreography belong to the discrete path.
func NewScrollDispatcher() *Dispatcher {
	d := NewDispatcher("scroll")
	d.Register(KeyViewpoint, animateViewpoint)
	d.Register(KeyTimeSlider, animateTimeSlider)
	return d
}

// animateViewpoint blends the camera between the current and next slide's
// viewpoints and animates the map toward the blend.
func animateViewpoint(ctx context.Context, f *Frame) error {
	if f.Map == nil {
		return errors.New("no map view attached")
	}

	var next *model.Viewpoint
	if f.Next != nil {
		next = f.Next.Viewpoint
	}

	vp := BlendViewpoint(f.Current.Viewpoint, next, f.Progress)
	if vp == nil {
		// No next viewpoint: camera stays at the last applied one.
		return nil
	}

	dur := f.AnimationDuration
	if dur <= 0 {
		dur = DefaultAnimationDuration
	}
	return f.Map.GoTo(ctx, *vp, bridge.GoToOptions{Animate: true, Duration: dur})
}

// animateTimeSlider blends the slider position within the current slide's
// window, snaps it to the step grid, moves the visible end-time extent (start
// left open) and halts any active playback.
func animateTimeSlider(ctx context.Context, f *Frame) error {
	if f.Time == nil {
		return errors.New("no time slider attached")
	}

	win := f.Current.TimeSlider
	if win == nil {
		return nil
	}

	end := BlendTime(*win, f.Progress)
	if err := f.Time.SetEnd(ctx, end); err != nil {
		return err
	}
	return f.Time.Stop(ctx)
}
