// Package scroll derives per-slide progress from the scroll geometry the
// narrative page reports: scroll offsets, panel heights, and the docking
// state of the pinned map panel.
package scroll

import (
	"sync"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// Direction is the current scroll direction.
type Direction int

// Scroll directions.
const (
	DirectionNone Direction = iota
	DirectionDown
	DirectionUp
)

func (d Direction) String() string {
	switch d {
	case DirectionDown:
		return "down"
	case DirectionUp:
		return "up"
	default:
		return "none"
	}
}

// Tracker maintains scroll direction, docking state and panel bounds, and
// turns a scroll offset into clamped per-slide progress.
//
// Ordering matters: Observe must see a scroll offset before SetDocked so the
// dock-start policy can consult the direction of travel.
type Tracker struct {
	mu        sync.Mutex
	lastY     float64
	direction Direction
	docked    bool
	dockStart float64
	panels    []model.Panel
}

// New creates a tracker with no layout.
func New() *Tracker {
	return &Tracker{}
}

// SetPanels replaces the panel layout reported by the narrative page.
func (t *Tracker) SetPanels(panels []model.Panel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panels = panels
}

// Observe records a scroll offset and returns the direction of travel.
// Equal consecutive offsets keep the previous direction.
func (t *Tracker) Observe(y float64) Direction {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case y > t.lastY:
		t.direction = DirectionDown
	case y < t.lastY:
		t.direction = DirectionUp
	}
	t.lastY = y
	return t.direction
}

// SetDocked updates the docking state. The dock-start offset is captured only
// when docking begins while scrolling downward; re-docking on an upward
// scroll leaves the recorded offset unchanged.
func (t *Tracker) SetDocked(docked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if docked && !t.docked && t.direction == DirectionDown {
		t.dockStart = t.lastY
	}
	t.docked = docked
}

// Docked reports whether the narrative panel is pinned to the viewport.
func (t *Tracker) Docked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.docked
}

// Direction returns the last observed direction of travel.
func (t *Tracker) Direction() Direction {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.direction
}

// DockStart returns the captured dock-start scroll offset.
func (t *Tracker) DockStart() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dockStart
}

// Progress returns the normalized scroll position within the given slide's
// panel, clamped to [0,1] regardless of the scroll offset.
func (t *Tracker) Progress(slide int) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	start, end := t.panelBounds(slide)
	if end <= start {
		return 0
	}

	p := (t.lastY - start) / (end - start)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// panelBounds sums prior panels' effective heights from the dock-start
// offset. Callers hold the lock.
func (t *Tracker) panelBounds(slide int) (start, end float64) {
	start = t.dockStart
	for i := 0; i < slide && i < len(t.panels); i++ {
		start += t.effectiveHeight(i)
	}
	if slide < 0 || slide >= len(t.panels) {
		return start, start
	}
	return start, start + t.effectiveHeight(slide)
}

// effectiveHeight is the scroll distance a panel occupies. The first panel's
// top margin is absorbed by the dock offset and the last panel's bottom
// margin lies past the undock point, so both are excluded.
func (t *Tracker) effectiveHeight(i int) float64 {
	p := t.panels[i]
	h := p.Height
	if i > 0 {
		h += p.MarginTop
	}
	if i < len(t.panels)-1 {
		h += p.MarginBottom
	}
	return h
}
