package story

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// Story is the read-only choreography for one narrative: a list of slides
// indexed by slide number.
type Story struct {
	slides []model.Slide
}

// Load reads a choreography JSON file (an array of slide entries).
// Suspicious slides are logged and kept; playback degrades silently rather
// than interrupting the narrative.
func Load(path string) (*Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story file: %w", err)
	}
	return Parse(data)
}

// Parse decodes choreography JSON.
func Parse(data []byte) (*Story, error) {
	var slides []model.Slide
	if err := json.Unmarshal(data, &slides); err != nil {
		return nil, fmt.Errorf("failed to parse story: %w", err)
	}

	s := &Story{slides: slides}
	s.validate()
	return s, nil
}

// validate warns about entries that will degrade at playback time.
func (s *Story) validate() {
	for i := range s.slides {
		win := s.slides[i].TimeSlider
		if win == nil {
			continue
		}
		if win.End.Before(win.Start) {
			slog.Warn("Story: slide has inverted time window", "slide", i, "start", win.Start, "end", win.End)
		}
		if win.Step <= 0 {
			slog.Warn("Story: slide has non-positive time step, snapping disabled", "slide", i, "step", win.Step)
		}
		if win.Unit != "" && !win.Unit.Valid() {
			slog.Warn("Story: slide has unknown time step unit", "slide", i, "unit", win.Unit)
		}
	}
}

// Len returns the number of slides.
func (s *Story) Len() int {
	return len(s.slides)
}

// Slide returns the entry for the given slide number, or nil when the index
// is out of range (callers treat that as a no-op).
func (s *Story) Slide(i int) *model.Slide {
	if i < 0 || i >= len(s.slides) {
		return nil
	}
	return &s.slides[i]
}

// Pair returns the current and next slides for interpolation.
// Next is nil on the last slide, which pins scroll-linked handlers to the
// current values.
func (s *Story) Pair(i int) (current, next *model.Slide) {
	return s.Slide(i), s.Slide(i + 1)
}

// Slides returns the underlying slide list for serving to clients.
func (s *Story) Slides() []model.Slide {
	return s.slides
}
