package choreo

import (
	"testing"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

func vp(rotation, scale, xmin, ymin, xmax, ymax float64) *model.Viewpoint {
	return &model.Viewpoint{
		Rotation: rotation,
		Scale:    scale,
		TargetGeometry: model.Extent{
			SpatialReference: model.SpatialReference{WKID: 102100},
			XMin:             xmin,
			YMin:             ymin,
			XMax:             xmax,
			YMax:             ymax,
		},
	}
}

func TestBlendViewpoint(t *testing.T) {
	cur := vp(0, 1000, 0, 0, 10, 10)
	next := vp(90, 3000, 10, 20, 30, 50)

	tests := []struct {
		name     string
		progress float64
		want     *model.Viewpoint
	}{
		{"ProgressZero_CurrentUnchanged", 0, vp(0, 1000, 0, 0, 10, 10)},
		{"ProgressOne_NextReached", 1, vp(90, 3000, 10, 20, 30, 50)},
		{"Midpoint", 0.5, vp(45, 2000, 5, 10, 20, 30)},
		{"ClampBelow", -2, vp(0, 1000, 0, 0, 10, 10)},
		{"ClampAbove", 7, vp(90, 3000, 10, 20, 30, 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlendViewpoint(cur, next, tt.progress)
			if got == nil {
				t.Fatal("BlendViewpoint returned nil")
			}
			if *got != *tt.want {
				t.Errorf("BlendViewpoint(%v) = %+v, want %+v", tt.progress, got, tt.want)
			}
		})
	}
}

func TestBlendViewpoint_SpatialReferenceCopied(t *testing.T) {
	cur := vp(0, 1000, 0, 0, 10, 10)
	next := vp(90, 3000, 10, 20, 30, 50)
	next.TargetGeometry.SpatialReference = model.SpatialReference{WKID: 4326}

	got := BlendViewpoint(cur, next, 0.5)
	if got.TargetGeometry.SpatialReference.WKID != 102100 {
		t.Errorf("spatial reference = %d, want the current viewpoint's 102100", got.TargetGeometry.SpatialReference.WKID)
	}
}

func TestBlendViewpoint_NoNext(t *testing.T) {
	cur := vp(0, 1000, 0, 0, 10, 10)
	if got := BlendViewpoint(cur, nil, 0.5); got != nil {
		t.Errorf("BlendViewpoint with nil next = %+v, want nil", got)
	}
	if got := BlendViewpoint(nil, cur, 0.5); got != nil {
		t.Errorf("BlendViewpoint with nil current = %+v, want nil", got)
	}
}

func TestBlendTime_CeilingSnap(t *testing.T) {
	start := time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * 24 * time.Hour)
	win := model.TimeWindow{Start: start, End: end, Step: 1, Unit: model.UnitDays}

	tests := []struct {
		name     string
		progress float64
		want     time.Time
	}{
		{"Zero_IsStart", 0, start},
		{"One_IsEnd", 1, end},
		// 0.15 * 10d = 1.5d -> ceil to 2d, never round down
		{"CeilNotNearest", 0.15, start.Add(2 * 24 * time.Hour)},
		// 0.41 * 10d = 4.1d -> 5d even though 4d is closer
		{"CeilAgainstNearest", 0.41, start.Add(5 * 24 * time.Hour)},
		// exact boundary stays put
		{"ExactBoundary", 0.3, start.Add(3 * 24 * time.Hour)},
		{"ClampAbove", 3, end},
		{"ClampBelow", -1, start},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlendTime(win, tt.progress)
			if !got.Equal(tt.want) {
				t.Errorf("BlendTime(%v) = %v, want %v", tt.progress, got, tt.want)
			}
		})
	}
}

func TestBlendTime_SnapNeverBelowRaw(t *testing.T) {
	start := time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC)
	win := model.TimeWindow{
		Start: start,
		End:   start.Add(100 * time.Hour),
		Step:  6,
		Unit:  model.UnitHours,
	}

	for p := 0.0; p <= 1.0; p += 0.07 {
		raw := start.Add(time.Duration(float64(100*time.Hour) * p))
		got := BlendTime(win, p)
		if got.Before(raw) && !got.Equal(win.End) {
			t.Errorf("progress %v: snap %v is before raw %v", p, got, raw)
		}
		if got.After(win.End) {
			t.Errorf("progress %v: snap %v exceeds end %v", p, got, win.End)
		}
	}
}

func TestBlendTime_NonPositiveStep(t *testing.T) {
	start := time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	win := model.TimeWindow{Start: start, End: end, Step: 0, Unit: model.UnitHours}

	// No snapping: raw blend comes back clamped only
	got := BlendTime(win, 0.5)
	want := start.Add(4 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("BlendTime with zero step = %v, want raw blend %v", got, want)
	}
}

func TestBlendTime_MonthSnap(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC)
	win := model.TimeWindow{Start: start, End: end, Step: 1, Unit: model.UnitMonths}

	// Mid-February blend must snap forward to March 1st
	got := BlendTime(win, 0.25)
	want := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("BlendTime month snap = %v, want %v", got, want)
	}

	if got := BlendTime(win, 1); !got.Equal(end) {
		t.Errorf("BlendTime(1) = %v, want end %v", got, end)
	}
}

func TestBlendTime_UnknownUnit(t *testing.T) {
	start := time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	win := model.TimeWindow{Start: start, End: end, Step: 2, Unit: "fortnights"}

	// Unknown units cannot define a snap grid; the raw blend is used
	got := BlendTime(win, 0.5)
	if !got.Equal(start.Add(2 * time.Hour)) {
		t.Errorf("BlendTime unknown unit = %v, want raw blend", got)
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(2, 10, 0.25); got != 4 {
		t.Errorf("Lerp(2,10,0.25) = %v, want 4", got)
	}
	if got := Lerp(10, 2, 0.5); got != 6 {
		t.Errorf("Lerp(10,2,0.5) = %v, want 6", got)
	}
}
