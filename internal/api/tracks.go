package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/tracks"
)

// TracksHandler serves stored track metadata, observations and density
// summaries.
type TracksHandler struct {
	store tracks.Store
	// densityResolution is the default H3 resolution for density summaries.
	densityResolution int
	// defaultLimit caps observation responses unless the query overrides it.
	defaultLimit int
}

// NewTracksHandler creates the handler.
func NewTracksHandler(store tracks.Store, densityResolution, defaultLimit int) *TracksHandler {
	return &TracksHandler{
		store:             store,
		densityResolution: densityResolution,
		defaultLimit:      defaultLimit,
	}
}

// HandleList returns all track metadata.
func (h *TracksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListTracks(r.Context())
	if err != nil {
		http.Error(w, "failed to list tracks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"tracks": list})
}

// HandleTrack returns one track's metadata.
func (h *TracksHandler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.Track(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, tracks.ErrNotFound) {
			http.Error(w, "track not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load track", http.StatusInternalServerError)
		return
	}
	writeJSON(w, t)
}

// HandleObservations returns a track's observations, optionally windowed by
// the start/end query parameters (RFC3339) and capped by limit.
func (h *TracksHandler) HandleObservations(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseWindow(w, r)
	if !ok {
		return
	}

	limit := h.defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	obs, err := h.store.ObservationsInWindow(r.Context(), r.PathValue("id"), start, end, limit)
	if err != nil {
		http.Error(w, "failed to query observations", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"observations": obs})
}

// HandleDensity returns an H3 cell density summary for a track.
func (h *TracksHandler) HandleDensity(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseWindow(w, r)
	if !ok {
		return
	}

	resolution := h.densityResolution
	if s := r.URL.Query().Get("resolution"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "invalid resolution", http.StatusBadRequest)
			return
		}
		resolution = n
	}

	cells, err := h.store.Density(r.Context(), r.PathValue("id"), start, end, resolution)
	if err != nil {
		http.Error(w, "failed to summarize density", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"resolution": resolution, "cells": cells})
}

// parseWindow reads optional RFC3339 start/end query parameters. Absent
// parameters leave the window open on that side.
func parseWindow(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	q := r.URL.Query()
	if s := q.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			http.Error(w, "invalid start time", http.StatusBadRequest)
			return start, end, false
		}
		start = t
	}
	if s := q.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			http.Error(w, "invalid end time", http.StatusBadRequest)
			return start, end, false
		}
		end = t
	}
	return start, end, true
}
