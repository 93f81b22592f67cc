// Package choreo maps continuous scroll progress onto discrete choreography:
// blended camera viewpoints, quantized time-slider positions, and the
// dispatch tables that route per-slide choreography keys to handlers.
package choreo

import (
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 clamps p to [0,1].
func Clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// BlendViewpoint returns the viewpoint at progress between cur and next.
// Rotation, scale and every extent coordinate are blended linearly; the
// spatial reference is copied unchanged from cur. With no next viewpoint the
// result is nil and the camera stays where it is.
func BlendViewpoint(cur, next *model.Viewpoint, progress float64) *model.Viewpoint {
	if cur == nil || next == nil {
		return nil
	}
	p := Clamp01(progress)

	return &model.Viewpoint{
		Rotation: Lerp(cur.Rotation, next.Rotation, p),
		Scale:    Lerp(cur.Scale, next.Scale, p),
		TargetGeometry: model.Extent{
			SpatialReference: cur.TargetGeometry.SpatialReference,
			XMin:             Lerp(cur.TargetGeometry.XMin, next.TargetGeometry.XMin, p),
			YMin:             Lerp(cur.TargetGeometry.YMin, next.TargetGeometry.YMin, p),
			XMax:             Lerp(cur.TargetGeometry.XMax, next.TargetGeometry.XMax, p),
			YMax:             Lerp(cur.TargetGeometry.YMax, next.TargetGeometry.YMax, p),
		},
	}
}

// BlendTime returns the time-slider end position at progress within the
// window: a linear blend between start and end, snapped forward to the next
// step boundary (ceiling, not nearest), clamped to the end bound.
// A non-positive step skips snapping and only clamps.
func BlendTime(win model.TimeWindow, progress float64) time.Time {
	p := Clamp01(progress)
	span := win.End.Sub(win.Start)
	raw := win.Start.Add(time.Duration(float64(span) * p))

	if win.Step <= 0 {
		return clampEnd(raw, win.End)
	}

	if step, ok := win.Unit.FixedDuration(win.Step); ok {
		if step <= 0 {
			return clampEnd(raw, win.End)
		}
		offset := raw.Sub(win.Start)
		n := offset / step
		if offset%step != 0 {
			n++
		}
		return clampEnd(win.Start.Add(n*step), win.End)
	}

	if win.Unit != model.UnitMonths && win.Unit != model.UnitYears {
		// Unknown unit: no snap grid to apply.
		return clampEnd(raw, win.End)
	}

	// Calendar units: walk boundaries forward from the window start.
	t := win.Start
	for t.Before(raw) {
		t = win.Unit.Add(t, win.Step)
	}
	return clampEnd(t, win.End)
}

func clampEnd(t, end time.Time) time.Time {
	if t.After(end) {
		return end
	}
	return t
}
