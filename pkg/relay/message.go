// Package relay carries the postMessage-style contract between the narrative
// page, the embedded map and the controller over WebSocket.
package relay

import (
	"context"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// Source tags every message exchanged under this contract. Messages with any
// other source are ignored.
const Source = "storymap-controller"

// Message types carried in Payload.Type.
const (
	TypeProgress  = "progress"
	TypeSlide     = "slide"
	TypeScroll    = "scroll"
	TypeDock      = "dock"
	TypeLayout    = "layout"
	TypeHash      = "hash"
	TypeSrc       = "src"
	TypeDirective = "directive"
)

// Envelope wraps every relay message. There is no versioning and no
// acknowledgment; delivery is best-effort.
type Envelope struct {
	Source  string  `json:"source"`
	Payload Payload `json:"payload"`
}

// Payload is the union of all message bodies. Pointer fields distinguish
// absent values from zero values.
type Payload struct {
	Type string `json:"type,omitempty"`

	// Handshake: declares embedded mode to a newly observed embed client.
	IsEmbedded *bool `json:"isEmbedded,omitempty"`

	// Progress updates.
	Slide    *int     `json:"slide,omitempty"`
	Progress *float64 `json:"progress,omitempty"`

	// Scroll geometry from the narrative page.
	ScrollY *float64      `json:"scrollY,omitempty"`
	Docked  *bool         `json:"docked,omitempty"`
	Panels  []model.Panel `json:"panels,omitempty"`

	// Navigation.
	Hash string `json:"hash,omitempty"`
	Src  string `json:"src,omitempty"`

	// Directive shipped to embed clients.
	Directive any `json:"directive,omitempty"`
}

// EventSink receives decoded relay events. Implementations must not block;
// they run on the hub's per-connection read goroutines.
type EventSink interface {
	// OnProgress delivers a progress update for a slide.
	OnProgress(ctx context.Context, slide int, progress float64)
	// OnScroll delivers a raw scroll offset.
	OnScroll(ctx context.Context, y float64)
	// OnDock delivers a docking state change.
	OnDock(ctx context.Context, docked bool)
	// OnLayout replaces the panel layout.
	OnLayout(ctx context.Context, panels []model.Panel)
	// OnHash delivers a URL hash change.
	OnHash(ctx context.Context, fragment string)
	// OnSlide delivers the authoritative slide pointer parsed from the
	// embed src fragment.
	OnSlide(ctx context.Context, slide int)
	// OnEmbed delivers the embedded-mode flag.
	OnEmbed(ctx context.Context, embedded bool)
}
