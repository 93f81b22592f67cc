package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/WarrenDz/scrolly-story-animations/pkg/bridge"
	"github.com/WarrenDz/scrolly-story-animations/pkg/controller"
	"github.com/WarrenDz/scrolly-story-animations/pkg/story"
)

// StoryHandler serves the choreography and the playback state, and accepts
// hash navigation over plain HTTP for clients without a relay connection.
type StoryHandler struct {
	story *story.Story
	ctrl  *controller.Controller
	hub   ClientCounter
}

// ClientCounter reports attached relay clients per role.
type ClientCounter interface {
	ClientCount() (narrative, embed int)
}

// NewStoryHandler creates the handler.
func NewStoryHandler(s *story.Story, ctrl *controller.Controller, hub ClientCounter) *StoryHandler {
	return &StoryHandler{story: s, ctrl: ctrl, hub: hub}
}

// HandleStory returns the full slide list.
func (h *StoryHandler) HandleStory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"slides": h.story.Slides(),
		"count":  h.story.Len(),
	})
}

// HandleSlide returns a single slide by index.
func (h *StoryHandler) HandleSlide(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid slide index", http.StatusBadRequest)
		return
	}

	slide := h.story.Slide(index)
	if slide == nil {
		http.Error(w, "slide not found", http.StatusNotFound)
		return
	}
	writeJSON(w, slide)
}

// StateResponse is the playback state snapshot.
type StateResponse struct {
	Slide      int                    `json:"slide"`
	Embedded   bool                   `json:"embedded"`
	TimeSlider bridge.TimeSliderState `json:"timeSlider"`
	Narratives int                    `json:"narratives"`
	Embeds     int                    `json:"embeds"`
}

// HandleState returns the current playback state and client counts.
func (h *StoryHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	resp := StateResponse{
		Slide:      h.ctrl.Slide(),
		Embedded:   h.ctrl.Embedded(),
		TimeSlider: h.ctrl.TimeSliderState(),
	}
	if h.hub != nil {
		resp.Narratives, resp.Embeds = h.hub.ClientCount()
	}
	writeJSON(w, resp)
}

// NavigateRequest carries a hash navigation target.
type NavigateRequest struct {
	Hash string `json:"hash"`
}

// HandleNavigate moves the slide pointer as if the page's URL hash changed.
func (h *StoryHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.ctrl.OnHash(r.Context(), req.Hash)
	writeJSON(w, map[string]int{"slide": h.ctrl.Slide()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}
